// Package boop decodes boop.fun bonding curves and quotes swaps against them.
//
// Two curve variants exist, selected by the damping term byte:
//
//	30: scaling factor curve, out = sf/x - sf/(x+in) with sf = 30 * virtualToken * 1e9
//	31: constant product on virtual SOL against a 1e18 token supply
//
// Any other damping term is rejected as a decode failure.
package boop

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

var (
	// BoopProgramID is the boop.fun launchpad program.
	BoopProgramID = solana.MustPublicKeyFromBase58("boop8hVGQGqehUK2iVEMEnMrL5RbjywRzHKBmBE7ry4")

	// BondingCurveDiscriminator is the Anchor discriminator of BondingCurve.
	BondingCurveDiscriminator = []byte{23, 183, 248, 55, 96, 216, 172, 96}
)

const (
	DampingScalingFactor uint8 = 30
	DampingVirtualXYK    uint8 = 31

	// TokenTotalSupply is 1e9 tokens with 9 decimals.
	TokenTotalSupply = "1000000000000000000"

	bondingCurveSize = 8 + 32 + 32 + 6*8 + 1 + 1 + 2
)

// BondingCurve is the decoded boop.fun curve account.
type BondingCurve struct {
	Discriminator              [8]byte
	Creator                    solana.PublicKey
	Mint                       solana.PublicKey
	VirtualSolReserves         uint64
	VirtualTokenReserves       uint64
	GraduationTarget           uint64
	GraduationFee              uint64
	SolReserves                uint64
	TokenReserves              uint64
	DampingTerm                uint8
	SwapFeeBasisPoints         uint8
	TokenForStakersBasisPoints uint16
}

// DeriveBondingCurve returns the curve PDA ["bonding_curve", mint].
func DeriveBondingCurve(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("bonding_curve"), mint.Bytes()},
		BoopProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive boop bonding curve: %w", err)
	}
	return addr, nil
}

// DecodeBondingCurve разбирает аккаунт кривой и проверяет вариант формулы.
func DecodeBondingCurve(data []byte) (*BondingCurve, error) {
	venue := types.MarketBoopFun.String()
	if err := model.CheckDiscriminator(types.MarketBoopFun, data, BondingCurveDiscriminator, bondingCurveSize); err != nil {
		return nil, err
	}
	var curve BondingCurve
	if err := bin.NewBinDecoder(data).Decode(&curve); err != nil {
		return nil, &types.DecodeError{Venue: venue, Reason: err.Error()}
	}
	switch curve.DampingTerm {
	case DampingScalingFactor, DampingVirtualXYK:
	default:
		return nil, &types.DecodeError{Venue: venue, Reason: fmt.Sprintf("unknown damping term %d", curve.DampingTerm)}
	}
	if curve.VirtualSolReserves == 0 || curve.TokenReserves == 0 {
		return nil, &types.DecodeError{Venue: venue, Reason: "zero reserves"}
	}
	return &curve, nil
}
