package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

type fakePriceSource struct {
	prices map[solana.PublicKey]*model.PriceResult
}

func (f *fakePriceSource) Price(_ context.Context, mint solana.PublicKey) (*model.PriceResult, error) {
	p, ok := f.prices[mint]
	if !ok {
		return nil, &types.NotFoundError{Account: mint.String(), What: "bonding curve"}
	}
	return p, nil
}

func newResolver() *PriceResolver {
	pct := 12.61
	src := &fakePriceSource{prices: map[solana.PublicKey]*model.PriceResult{
		testMint: {LamportsPerToken: 28, BondingCurvePercent: &pct},
	}}
	return NewPriceResolver(map[types.Market]model.PriceSource{types.MarketPumpFun: src}, zap.NewNop())
}

func TestGetPriceUnits(t *testing.T) {
	r := newResolver()

	p, err := r.GetPrice(context.Background(), types.MarketPumpFun, testMint, UnitLamports)
	require.NoError(t, err)
	assert.Equal(t, 28.0, p.Value)
	require.NotNil(t, p.BondingCurvePercent)
	assert.Equal(t, 12.61, *p.BondingCurvePercent)

	p, err = r.GetPrice(context.Background(), types.MarketPumpFun, testMint, "")
	require.NoError(t, err)
	assert.Equal(t, UnitSOL, p.Unit)
	assert.InDelta(t, 0.000000028, p.Value, 1e-15)
}

func TestGetPriceUnsupportedMarket(t *testing.T) {
	_, err := newResolver().GetPrice(context.Background(), types.MarketRaydiumCLMM, testMint, UnitSOL)
	assert.True(t, errors.Is(err, types.ErrUnsupportedMarket))
}

func TestGetPricesBatch(t *testing.T) {
	reqs := []PriceRequest{
		{Market: types.MarketPumpFun, Mint: testMint},
		{Market: types.MarketPumpFun, Mint: testPool},
		{Market: types.MarketMoonit, Mint: testMint},
	}

	out := newResolver().GetPrices(context.Background(), reqs, UnitLamports)
	require.Len(t, out, 3)

	assert.NoError(t, out[0].Err)
	assert.Equal(t, uint64(28), out[0].Price.LamportsPerToken)
	assert.True(t, types.IsNotFound(out[1].Err))
	assert.ErrorIs(t, out[2].Err, types.ErrUnsupportedMarket)
	assert.Equal(t, reqs[2], out[2].Request)
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("lamports")
	require.NoError(t, err)
	assert.Equal(t, UnitLamports, u)

	u, err = ParseUnit("")
	require.NoError(t, err)
	assert.Equal(t, UnitSOL, u)

	_, err = ParseUnit("usd")
	assert.True(t, types.IsValidationError(err))
}
