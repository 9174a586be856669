// internal/dex/raydium/quote.go
package raydium

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/amm"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// CPMMQuoter prices swaps against a Raydium CPMM pool.
type CPMMQuoter struct {
	reader model.AccountReader
	logger *zap.Logger
}

// NewCPMMQuoter creates a CPMM native quoter.
func NewCPMMQuoter(reader model.AccountReader, logger *zap.Logger) *CPMMQuoter {
	return &CPMMQuoter{reader: reader, logger: logger.Named("raydium-cpmm")}
}

// Quote implements model.NativeQuoter. The pool address must be supplied.
func (q *CPMMQuoter) Quote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	if req.PoolAddress == nil || req.PoolAddress.IsZero() {
		return nil, &types.ValidationError{Field: "pool_address", Reason: "required for RAYDIUM_CPMM"}
	}
	addr := *req.PoolAddress

	data, err := q.reader.GetAccountData(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to get cpmm pool %s: %w", addr, err)
	}
	state, err := DecodeCPMMPoolState(data)
	if err != nil {
		return nil, err
	}
	return QuoteFromCPMMState(state, addr, req), nil
}

// QuoteFromCPMMState prices a swap against a decoded pool. The reported
// protocol fee includes the fund fee.
func QuoteFromCPMMState(state *CPMMPoolState, addr solana.PublicKey, req model.QuoteRequest) *model.Quote {
	inReserve, outReserve := state.BaseReserve, state.QuoteReserve
	if req.IsBuy() {
		inReserve, outReserve = state.QuoteReserve, state.BaseReserve
	}

	fee, afterFee := amm.FeeOnInput(req.Amount, state.TotalFeeBps())
	out := amm.ConstantProductOut(inReserve, outReserve, afterFee)
	parts := amm.SplitFee(fee, state.TradeFeeBps, state.ProtocolFeeBps, state.FundFeeBps)

	return model.NewQuote(types.MarketRaydiumCPMM, req, out,
		amm.ScaledRatio(outReserve, inReserve),
		model.Fees{
			TradeFee:    parts[0],
			ProtocolFee: parts[1] + parts[2],
			TotalFee:    parts[0] + parts[1] + parts[2],
		},
		model.PoolInfo{
			Address:       addr,
			BaseReserve:   state.BaseReserve,
			QuoteReserve:  state.QuoteReserve,
			BaseDecimals:  TokenDecimals,
			QuoteDecimals: SolDecimals,
		})
}
