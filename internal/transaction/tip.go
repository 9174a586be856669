// internal/transaction/tip.go
package transaction

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

const (
	// DevTipBps is the developer tip taken from buys, 0.15%.
	DevTipBps = 15
	bpsDenom  = 10_000
)

// DevTipAddress получает комиссию разработчика с покупок.
var DevTipAddress = solana.MustPublicKeyFromBase58("CDuvRTHRaPFEQJYdHsEWpuE3yRB49Azi9e5g8Yi9Xm4d")

// DevTipLamports returns floor(amount * 0.0015).
func DevTipLamports(amount uint64) uint64 {
	return amount/bpsDenom*DevTipBps + amount%bpsDenom*DevTipBps/bpsDenom
}

// TipInstruction переводит lamports с кошелька на адрес чаевых.
func TipInstruction(from, to solana.PublicKey, lamports uint64) (solana.Instruction, error) {
	if lamports == 0 {
		return nil, errors.New("tip amount must be positive")
	}
	return system.NewTransferInstruction(lamports, from, to).Build(), nil
}
