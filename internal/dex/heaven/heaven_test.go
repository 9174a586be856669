package heaven

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

type mapReader map[solana.PublicKey][]byte

func (m mapReader) GetAccountData(_ context.Context, account solana.PublicKey) ([]byte, error) {
	if data, ok := m[account]; ok {
		return data, nil
	}
	return nil, &types.NotFoundError{Account: account.String()}
}

func encodeReserve(tokenA, tokenB, initialA, initialB uint64) []byte {
	data := make([]byte, reserveOffset+reserveSize+16)
	binary.LittleEndian.PutUint64(data[reserveOffset:], tokenA)
	binary.LittleEndian.PutUint64(data[reserveOffset+8:], tokenB)
	binary.LittleEndian.PutUint64(data[reserveOffset+48:], initialA)
	binary.LittleEndian.PutUint64(data[reserveOffset+56:], initialB)
	return data
}

var testMint = solana.MustPublicKeyFromBase58("7Y5UnkniiBZYmBt2dMtX1b3KLG7TM6V4SeGBgdoxQoG1")

func TestDecodeReserve(t *testing.T) {
	r, err := DecodeReserve(encodeReserve(1, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.TokenA)
	assert.Equal(t, uint64(2), r.TokenB)
	assert.Equal(t, uint64(3), r.InitialA)
	assert.Equal(t, uint64(4), r.InitialB)

	_, err = DecodeReserve(make([]byte, reserveOffset+10))
	assert.True(t, types.IsDecodeError(err))
}

func TestPrice(t *testing.T) {
	addr, err := DerivePoolState(testMint)
	require.NoError(t, err)
	mintData := make([]byte, 82)
	mintData[44] = 6

	// 750M токенов (6 знаков) против 25 SOL, продано 25% из 1B
	reader := mapReader{
		addr:     encodeReserve(750_000_000_000_000, 25_000_000_000, 1_000_000_000_000_000, 0),
		testMint: mintData,
	}
	price, err := NewPriceReader(reader, zap.NewNop()).Price(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(33), price.LamportsPerToken)
	require.NotNil(t, price.BondingCurvePercent)
	assert.InDelta(t, 25.0, *price.BondingCurvePercent, 1e-9)
}

func TestPriceMissingPool(t *testing.T) {
	_, err := NewPriceReader(mapReader{}, zap.NewNop()).Price(context.Background(), testMint)
	assert.True(t, types.IsNotFound(err))
}

func TestPriceFromReserveEdgeCases(t *testing.T) {
	empty := PriceFromReserve(&Reserve{}, 9)
	assert.Equal(t, uint64(0), empty.LamportsPerToken)
	assert.Equal(t, 0.0, *empty.BondingCurvePercent)

	grown := PriceFromReserve(&Reserve{TokenA: 2_000, TokenB: 1, InitialA: 1_000}, 0)
	assert.Equal(t, 0.0, *grown.BondingCurvePercent)
}
