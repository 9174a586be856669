// =============================
// File: internal/dex/pumpfun/price.go
// =============================
package pumpfun

import (
	"context"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/amm"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
)

// Price implements model.PriceSource using the curve's virtual reserves.
func (q *Quoter) Price(ctx context.Context, mint solana.PublicKey) (*model.PriceResult, error) {
	curve, _, err := q.FetchBondingCurve(ctx, mint)
	if err != nil {
		return nil, err
	}
	return PriceFromCurve(curve), nil
}

// PriceFromCurve returns lamports per whole token and curve progress.
func PriceFromCurve(curve *BondingCurve) *model.PriceResult {
	perToken := float64(curve.VirtualSolReserves) * math.Pow10(TokenDecimals) / float64(curve.VirtualTokenReserves)

	percent := 100.0
	if !curve.Complete {
		sold := float64(InitialRealTokenReserves) - float64(curve.RealTokenReserves)
		percent = amm.CompletionPercent(sold, float64(InitialRealTokenReserves))
	}

	return &model.PriceResult{
		LamportsPerToken:    amm.RoundLamports(perToken),
		BondingCurvePercent: &percent,
	}
}
