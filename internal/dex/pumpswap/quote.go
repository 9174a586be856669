// =============================
// File: internal/dex/pumpswap/quote.go
// =============================
package pumpswap

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/amm"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// Quoter reads PumpSwap pools and prices swaps against them.
type Quoter struct {
	reader model.AccountReader
	logger *zap.Logger
}

// NewQuoter creates a PumpSwap native quoter.
func NewQuoter(reader model.AccountReader, logger *zap.Logger) *Quoter {
	return &Quoter{reader: reader, logger: logger.Named("pumpswap")}
}

// FetchPool loads and decodes the canonical pool of mint.
func (q *Quoter) FetchPool(ctx context.Context, mint solana.PublicKey) (*PoolState, solana.PublicKey, error) {
	addr, err := DerivePool(mint)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	data, err := q.reader.GetAccountData(ctx, addr)
	if err != nil {
		return nil, addr, fmt.Errorf("failed to get pool %s: %w", addr, err)
	}
	pool, err := DecodePoolState(data)
	if err != nil {
		return nil, addr, err
	}
	return pool, addr, nil
}

// Quote implements model.NativeQuoter.
func (q *Quoter) Quote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	pool, addr, err := q.FetchPool(ctx, req.TokenMint())
	if err != nil {
		return nil, err
	}
	return QuoteFromPool(pool, addr, req), nil
}

// QuoteFromPool prices a swap against a decoded pool. The fee is taken on
// input and split between trade and protocol pro rata.
func QuoteFromPool(pool *PoolState, addr solana.PublicKey, req model.QuoteRequest) *model.Quote {
	// Покупка: SOL (quote) -> токен (base)
	inReserve, outReserve := pool.BaseReserve, pool.QuoteReserve
	if req.IsBuy() {
		inReserve, outReserve = pool.QuoteReserve, pool.BaseReserve
	}

	fee, afterFee := amm.FeeOnInput(req.Amount, pool.TradeFeeBps+pool.ProtocolFeeBps)
	out := amm.ConstantProductOut(inReserve, outReserve, afterFee)
	parts := amm.SplitFee(fee, pool.TradeFeeBps, pool.ProtocolFeeBps)

	return model.NewQuote(types.MarketPumpSwap, req, out,
		amm.ScaledRatio(outReserve, inReserve),
		model.Fees{TradeFee: parts[0], ProtocolFee: parts[1], TotalFee: parts[0] + parts[1]},
		model.PoolInfo{
			Address:       addr,
			BaseReserve:   pool.BaseReserve,
			QuoteReserve:  pool.QuoteReserve,
			BaseDecimals:  TokenDecimals,
			QuoteDecimals: SolDecimals,
		})
}
