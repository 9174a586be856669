package pumpfun

import (
	"context"
	"encoding/binary"
	"errors"
	"strconv"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

type fakeReader map[solana.PublicKey][]byte

func (f fakeReader) GetAccountData(_ context.Context, account solana.PublicKey) ([]byte, error) {
	data, ok := f[account]
	if !ok {
		return nil, &types.NotFoundError{Account: account.String()}
	}
	return data, nil
}

func encodeCurve(vToken, vSol, realToken, realSol uint64, complete bool) []byte {
	data := make([]byte, bondingCurveSize)
	copy(data, BondingCurveDiscriminator)
	binary.LittleEndian.PutUint64(data[8:], vToken)
	binary.LittleEndian.PutUint64(data[16:], vSol)
	binary.LittleEndian.PutUint64(data[24:], realToken)
	binary.LittleEndian.PutUint64(data[32:], realSol)
	binary.LittleEndian.PutUint64(data[40:], 1_000_000_000_000_000)
	if complete {
		data[48] = 1
	}
	return data
}

const (
	testVirtualToken uint64 = 1_073_000_000_000_000
	testVirtualSol   uint64 = 30_000_000_000
)

var testMint = solana.MustPublicKeyFromBase58("7Y5UnkniiBZYmBt2dMtX1b3KLG7TM6V4SeGBgdoxQoG1")

func newTestQuoter(t *testing.T, data []byte) *Quoter {
	t.Helper()
	addr, err := DeriveBondingCurve(testMint)
	require.NoError(t, err)
	return NewQuoter(fakeReader{addr: data}, zap.NewNop())
}

func TestDecodeBondingCurve(t *testing.T) {
	curve, err := DecodeBondingCurve(encodeCurve(testVirtualToken, testVirtualSol, InitialRealTokenReserves, 0, false))
	require.NoError(t, err)
	assert.Equal(t, testVirtualToken, curve.VirtualTokenReserves)
	assert.Equal(t, testVirtualSol, curve.VirtualSolReserves)
	assert.Equal(t, InitialRealTokenReserves, curve.RealTokenReserves)
	assert.False(t, curve.Complete)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "short", data: encodeCurve(1, 1, 0, 0, false)[:30]},
		{name: "wrong discriminator", data: func() []byte {
			d := encodeCurve(1, 1, 0, 0, false)
			d[0] = 0xff
			return d
		}()},
		{name: "zero reserves", data: encodeCurve(0, 0, 0, 0, false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBondingCurve(tt.data)
			assert.True(t, types.IsDecodeError(err), "got %v", err)
		})
	}
}

func TestQuoteBuy(t *testing.T) {
	q := newTestQuoter(t, encodeCurve(testVirtualToken, testVirtualSol, InitialRealTokenReserves, 0, false))

	quote, err := q.Quote(context.Background(), model.QuoteRequest{
		Market:      types.MarketPumpFun,
		InputMint:   types.WSOL,
		OutputMint:  testMint,
		Amount:      10_000_000,
		SlippageBps: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(353_973_188_848), quote.OutAmount)
	assert.Equal(t, uint64(350_433_456_959), quote.MinOutAmount)
	assert.Equal(t, uint64(100_000), quote.Fees.TradeFee)
	assert.Equal(t, uint64(100_000), quote.Fees.TotalFee)
	assert.InDelta(t, 35_766.666666666, quote.SpotPrice, 1e-6)
	assert.InDelta(t, 35_397.3188848, quote.ExecutionPrice, 1e-6)
	assert.Equal(t, model.SourceNative, quote.Source)
	assert.Equal(t, testVirtualToken, quote.Pool.BaseReserve)
	assert.Equal(t, uint8(TokenDecimals), quote.Pool.BaseDecimals)

	impact, err := strconv.ParseFloat(quote.PriceImpactPct, 64)
	require.NoError(t, err)
	assert.InDelta(t, 1.0327, impact, 0.001)
	assert.Less(t, quote.OutAmount, testVirtualToken)
}

func TestQuoteSell(t *testing.T) {
	q := newTestQuoter(t, encodeCurve(testVirtualToken, testVirtualSol, InitialRealTokenReserves, 0, false))

	quote, err := q.Quote(context.Background(), model.QuoteRequest{
		Market:      types.MarketPumpFun,
		InputMint:   testMint,
		OutputMint:  types.WSOL,
		Amount:      1_000_000_000_000,
		SlippageBps: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(27_653_632), quote.OutAmount)
	assert.Equal(t, quote.OutAmount, quote.MinOutAmount)
	assert.Equal(t, uint64(279_329), quote.Fees.TradeFee)
}

func TestQuoteCompleteCurve(t *testing.T) {
	q := newTestQuoter(t, encodeCurve(testVirtualToken, testVirtualSol, 0, 85_000_000_000, true))

	_, err := q.Quote(context.Background(), model.QuoteRequest{
		InputMint:  types.WSOL,
		OutputMint: testMint,
		Amount:     1,
	})
	assert.True(t, errors.Is(err, types.ErrCurveComplete))
}

func TestQuoteMissingCurve(t *testing.T) {
	q := NewQuoter(fakeReader{}, zap.NewNop())
	_, err := q.Quote(context.Background(), model.QuoteRequest{
		InputMint:  types.WSOL,
		OutputMint: testMint,
		Amount:     1,
	})
	assert.True(t, types.IsNotFound(err))
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantPercent float64
	}{
		{name: "fresh", data: encodeCurve(testVirtualToken, testVirtualSol, InitialRealTokenReserves, 0, false), wantPercent: 0},
		{name: "partial", data: encodeCurve(testVirtualToken, testVirtualSol, 693_100_000_000_000, 0, false), wantPercent: 12.61},
		{name: "complete", data: encodeCurve(testVirtualToken, testVirtualSol, InitialRealTokenReserves, 0, true), wantPercent: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQuoter(t, tt.data)
			price, err := q.Price(context.Background(), testMint)
			require.NoError(t, err)
			// 30 SOL / 1.073e9 токенов = 27.96 лампорта за токен
			assert.Equal(t, uint64(28), price.LamportsPerToken)
			require.NotNil(t, price.BondingCurvePercent)
			assert.InDelta(t, tt.wantPercent, *price.BondingCurvePercent, 1e-9)
		})
	}
}
