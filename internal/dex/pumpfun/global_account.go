// =============================================
// File: internal/dex/pumpfun/global_account.go
// =============================================
package pumpfun

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// GlobalAccount represents the structure of the PumpFun global account data
type GlobalAccount struct {
	Discriminator               [8]byte
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

const globalAccountSize = 8 + 1 + 32 + 32 + 5*8

// DeriveGlobal returns the global config PDA ["global"].
func DeriveGlobal() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("global")}, PumpFunProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive global account: %w", err)
	}
	return addr, nil
}

// DecodeGlobalAccount deserializes the global account data.
func DecodeGlobalAccount(data []byte) (*GlobalAccount, error) {
	if len(data) < globalAccountSize {
		return nil, &types.DecodeError{Venue: types.MarketPumpFun.String(), Reason: fmt.Sprintf("global account data too short: %d bytes", len(data))}
	}
	var account GlobalAccount
	if err := bin.NewBinDecoder(data).Decode(&account); err != nil {
		return nil, &types.DecodeError{Venue: types.MarketPumpFun.String(), Reason: err.Error()}
	}
	return &account, nil
}

// FetchGlobalAccount fetches and deserializes the global account data
func (q *Quoter) FetchGlobalAccount(ctx context.Context) (*GlobalAccount, solana.PublicKey, error) {
	addr, err := DeriveGlobal()
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	data, err := q.reader.GetAccountData(ctx, addr)
	if err != nil {
		return nil, addr, fmt.Errorf("failed to get global account: %w", err)
	}
	account, err := DecodeGlobalAccount(data)
	if err != nil {
		return nil, addr, err
	}

	q.logger.Debug("Global account data parsed",
		zap.String("fee_recipient", account.FeeRecipient.String()),
		zap.Uint64("fee_basis_points", account.FeeBasisPoints))
	return account, addr, nil
}
