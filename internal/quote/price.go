// internal/quote/price.go
package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// Unit is the denomination of a reported price.
type Unit string

const (
	UnitSOL      Unit = "SOL"
	UnitLamports Unit = "LAMPORTS"
)

// ParseUnit accepts SOL or LAMPORTS in any case; empty means SOL.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToUpper(strings.TrimSpace(s))) {
	case "", UnitSOL:
		return UnitSOL, nil
	case UnitLamports:
		return UnitLamports, nil
	default:
		return "", &types.ValidationError{Field: "unit", Reason: fmt.Sprintf("unsupported unit %q", s)}
	}
}

const maxParallelPrices = 8

// Price is the spot price of one token in the requested unit.
type Price struct {
	Market              types.Market
	Mint                solana.PublicKey
	Unit                Unit
	Value               float64
	LamportsPerToken    uint64
	BondingCurvePercent *float64
}

// PriceRequest is one entry of a batch lookup.
type PriceRequest struct {
	Market types.Market
	Mint   solana.PublicKey
}

// PriceOutcome is one result of a batch lookup; Err is set instead of Price on failure.
type PriceOutcome struct {
	Request PriceRequest
	Price   *Price
	Err     error
}

// PriceResolver reads spot prices from the venues that expose one natively.
type PriceResolver struct {
	sources map[types.Market]model.PriceSource
	logger  *zap.Logger
}

// NewPriceResolver создает резолвер цен.
func NewPriceResolver(sources map[types.Market]model.PriceSource, logger *zap.Logger) *PriceResolver {
	r := &PriceResolver{
		sources: make(map[types.Market]model.PriceSource, len(sources)),
		logger:  logger.Named("price-resolver"),
	}
	for market, src := range sources {
		if src != nil {
			r.sources[market] = src
		}
	}
	return r
}

// GetPrice returns the spot price of mint on market, or ErrUnsupportedMarket.
func (r *PriceResolver) GetPrice(ctx context.Context, market types.Market, mint solana.PublicKey, unit Unit) (*Price, error) {
	src, ok := r.sources[market]
	if !ok {
		return nil, fmt.Errorf("price for %s: %w", market, types.ErrUnsupportedMarket)
	}
	if unit == "" {
		unit = UnitSOL
	}

	res, err := src.Price(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("price for %s on %s: %w", mint, market, err)
	}

	p := &Price{
		Market:              market,
		Mint:                mint,
		Unit:                unit,
		LamportsPerToken:    res.LamportsPerToken,
		BondingCurvePercent: res.BondingCurvePercent,
	}
	if unit == UnitLamports {
		p.Value = float64(res.LamportsPerToken)
	} else {
		p.Value = float64(res.LamportsPerToken) / types.LamportsPerSOL
	}

	r.logger.Debug("price resolved",
		zap.String("market", market.String()),
		zap.String("mint", mint.String()),
		zap.Uint64("lamports_per_token", res.LamportsPerToken))
	return p, nil
}

// GetPrices resolves a batch in parallel. A failed entry does not cancel the others.
func (r *PriceResolver) GetPrices(ctx context.Context, reqs []PriceRequest, unit Unit) []PriceOutcome {
	out := make([]PriceOutcome, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelPrices)

	for i, req := range reqs {
		g.Go(func() error {
			p, err := r.GetPrice(gctx, req.Market, req.Mint, unit)
			out[i] = PriceOutcome{Request: req, Price: p, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Supports reports whether market has a native price source.
func (r *PriceResolver) Supports(market types.Market) bool {
	_, ok := r.sources[market]
	return ok
}
