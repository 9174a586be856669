// internal/dex/raydium/state.go
package raydium

import (
	bin "github.com/gagliardetto/binary"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// CPMMPoolState определяет блок резервов и комиссий пула CPMM
type CPMMPoolState struct {
	Discriminator  [8]byte
	Header         [CPMMBaseReserveOffset - 8]byte
	BaseReserve    uint64
	QuoteReserve   uint64
	TradeFeeBps    uint64
	ProtocolFeeBps uint64
	FundFeeBps     uint64
}

// TotalFeeBps sums every fee rate charged on input.
func (s *CPMMPoolState) TotalFeeBps() uint64 {
	return s.TradeFeeBps + s.ProtocolFeeBps + s.FundFeeBps
}

// DecodeCPMMPoolState parses a CPMM pool account.
func DecodeCPMMPoolState(data []byte) (*CPMMPoolState, error) {
	if err := model.CheckDiscriminator(types.MarketRaydiumCPMM, data, CPMMPoolDiscriminator, cpmmStateSize); err != nil {
		return nil, err
	}
	var state CPMMPoolState
	if err := bin.NewBinDecoder(data).Decode(&state); err != nil {
		return nil, &types.DecodeError{Venue: types.MarketRaydiumCPMM.String(), Reason: err.Error()}
	}
	for _, rate := range []uint64{state.TradeFeeBps, state.ProtocolFeeBps, state.FundFeeBps} {
		if rate > 10_000 {
			return nil, &types.DecodeError{Venue: types.MarketRaydiumCPMM.String(), Reason: "fee rate above 100%"}
		}
	}
	if state.TotalFeeBps() > 10_000 {
		return nil, &types.DecodeError{Venue: types.MarketRaydiumCPMM.String(), Reason: "fee rate above 100%"}
	}
	return &state, nil
}
