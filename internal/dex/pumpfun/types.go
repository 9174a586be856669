// =============================
// File: internal/dex/pumpfun/types.go
// =============================
package pumpfun

import (
	bin "github.com/gagliardetto/binary"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// bondingCurveSize: discriminator + 5 u64 + bool.
const bondingCurveSize = 8 + 5*8 + 1

// BondingCurve is the decoded state of a Pump.fun curve account.
type BondingCurve struct {
	Discriminator        [8]byte
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}

// DecodeBondingCurve разбирает данные аккаунта bonding curve.
func DecodeBondingCurve(data []byte) (*BondingCurve, error) {
	if err := model.CheckDiscriminator(types.MarketPumpFun, data, BondingCurveDiscriminator, bondingCurveSize); err != nil {
		return nil, err
	}
	var curve BondingCurve
	if err := bin.NewBinDecoder(data).Decode(&curve); err != nil {
		return nil, &types.DecodeError{Venue: types.MarketPumpFun.String(), Reason: err.Error()}
	}
	if curve.VirtualSolReserves == 0 || curve.VirtualTokenReserves == 0 {
		return nil, &types.DecodeError{Venue: types.MarketPumpFun.String(), Reason: "zero virtual reserves"}
	}
	return &curve, nil
}
