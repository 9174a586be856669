package pumpswap

import (
	bin "github.com/gagliardetto/binary"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// poolStateSize covers the reserve and fee block ending at offset 104.
const poolStateSize = 104

// PoolState is the reserve and fee block of a PumpSwap pool account.
// Reserves start at offset 72.
type PoolState struct {
	Discriminator  [8]byte
	Header         [64]byte
	BaseReserve    uint64 // токен
	QuoteReserve   uint64 // SOL
	TradeFeeBps    uint64
	ProtocolFeeBps uint64
}

// DecodePoolState parses account data into PoolState.
func DecodePoolState(data []byte) (*PoolState, error) {
	if err := model.CheckDiscriminator(types.MarketPumpSwap, data, PoolDiscriminator, poolStateSize); err != nil {
		return nil, err
	}
	var pool PoolState
	if err := bin.NewBinDecoder(data).Decode(&pool); err != nil {
		return nil, &types.DecodeError{Venue: types.MarketPumpSwap.String(), Reason: err.Error()}
	}
	// каждое поле проверяется отдельно, иначе сумма может переполниться
	if pool.TradeFeeBps > 10_000 || pool.ProtocolFeeBps > 10_000 || pool.TradeFeeBps+pool.ProtocolFeeBps > 10_000 {
		return nil, &types.DecodeError{Venue: types.MarketPumpSwap.String(), Reason: "fee rate above 100%"}
	}
	return &pool, nil
}
