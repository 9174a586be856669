// =============================
// File: internal/dex/pumpswap/config.go
// =============================
package pumpswap

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

var (
	// PumpSwapProgramID is the PumpSwap AMM program.
	PumpSwapProgramID = solana.MustPublicKeyFromBase58("PSwapMdSP4Y74jZVRvRzRCeRfN1yJLqqeVRK2JwfNvT")

	// PoolDiscriminator is the discriminator for Pool accounts
	PoolDiscriminator = []byte{241, 154, 109, 4, 17, 177, 109, 188}
)

const (
	// DefaultPoolReadyTimeout ограничивает ожидание только что созданного пула.
	DefaultPoolReadyTimeout = 5 * time.Second
	// PoolReadyPollInterval is the delay between pool existence checks.
	PoolReadyPollInterval = 200 * time.Millisecond

	TokenDecimals = 6
	SolDecimals   = 9
)

// DerivePool returns the canonical pool PDA ["pool", mint].
func DerivePool(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("pool"), mint.Bytes()},
		PumpSwapProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive pool: %w", err)
	}
	return addr, nil
}
