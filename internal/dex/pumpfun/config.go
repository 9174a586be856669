// =============================
// File: internal/dex/pumpfun/config.go
// =============================
package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Known PumpFun protocol addresses
var (
	// Program ID for Pump.fun protocol
	PumpFunProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// BondingCurveDiscriminator is the Anchor account discriminator of BondingCurve.
	BondingCurveDiscriminator = []byte{23, 183, 248, 55, 96, 216, 172, 96}
)

const (
	// FeeBasisPoints is the curve fee: on input for buys, on output for sells.
	FeeBasisPoints = 100

	// InitialRealTokenReserves is the real token balance of a fresh curve.
	InitialRealTokenReserves uint64 = 793_100_000_000_000

	TokenDecimals = 6
	SolDecimals   = 9
)

// DeriveBondingCurve returns the curve PDA ["bonding-curve", mint].
func DeriveBondingCurve(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("bonding-curve"), mint.Bytes()},
		PumpFunProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive bonding curve: %w", err)
	}
	return addr, nil
}
