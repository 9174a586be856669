// =============================
// File: internal/dex/pumpfun/quote.go
// =============================
package pumpfun

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/amm"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// Quoter reads Pump.fun curves and prices swaps against them.
type Quoter struct {
	reader model.AccountReader
	logger *zap.Logger
}

// NewQuoter creates a Pump.fun native quoter.
func NewQuoter(reader model.AccountReader, logger *zap.Logger) *Quoter {
	return &Quoter{reader: reader, logger: logger.Named("pumpfun")}
}

// FetchBondingCurve loads and decodes the curve of mint.
func (q *Quoter) FetchBondingCurve(ctx context.Context, mint solana.PublicKey) (*BondingCurve, solana.PublicKey, error) {
	addr, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	data, err := q.reader.GetAccountData(ctx, addr)
	if err != nil {
		return nil, addr, fmt.Errorf("failed to get bonding curve %s: %w", addr, err)
	}
	curve, err := DecodeBondingCurve(data)
	if err != nil {
		return nil, addr, err
	}
	return curve, addr, nil
}

// Quote implements model.NativeQuoter.
func (q *Quoter) Quote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	curve, addr, err := q.FetchBondingCurve(ctx, req.TokenMint())
	if err != nil {
		return nil, err
	}

	quote, err := QuoteFromCurve(curve, addr, req)
	if err != nil {
		return nil, err
	}

	q.logger.Debug("Native quote computed",
		zap.String("curve", addr.String()),
		zap.Bool("buy", req.IsBuy()),
		zap.Uint64("in", quote.InAmount),
		zap.Uint64("out", quote.OutAmount))
	return quote, nil
}

// QuoteFromCurve prices a swap against an already decoded curve.
func QuoteFromCurve(curve *BondingCurve, addr solana.PublicKey, req model.QuoteRequest) (*model.Quote, error) {
	if curve.Complete {
		return nil, types.ErrCurveComplete
	}

	var (
		out  uint64
		fee  uint64
		spot float64
	)
	if req.IsBuy() {
		// Покупка: комиссия берётся со входа в SOL
		var afterFee uint64
		fee, afterFee = amm.FeeOnInput(req.Amount, FeeBasisPoints)
		out = amm.VirtualReservesOut(curve.VirtualSolReserves, curve.VirtualTokenReserves, afterFee)
		spot = amm.ScaledRatio(curve.VirtualTokenReserves, curve.VirtualSolReserves)
	} else {
		// Продажа: комиссия берётся с полученных SOL
		solOut := amm.VirtualReservesOut(curve.VirtualTokenReserves, curve.VirtualSolReserves, req.Amount)
		fee, out = amm.FeeOnOutput(solOut, FeeBasisPoints)
		spot = amm.ScaledRatio(curve.VirtualSolReserves, curve.VirtualTokenReserves)
	}

	return model.NewQuote(types.MarketPumpFun, req, out, spot,
		model.Fees{TradeFee: fee, TotalFee: fee},
		model.PoolInfo{
			Address:       addr,
			BaseReserve:   curve.VirtualTokenReserves,
			QuoteReserve:  curve.VirtualSolReserves,
			BaseDecimals:  TokenDecimals,
			QuoteDecimals: SolDecimals,
		}), nil
}
