// ==============================================
// File: internal/dex/pumpfun/instructions.go
// ==============================================
package pumpfun

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// Event authority for the Pump.fun protocol
	PumpFunEventAuth = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")

	BuyDiscriminator  = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	SellDiscriminator = []byte{51, 230, 133, 164, 1, 127, 131, 173}
)

// InstructionAccounts holds the accounts shared by buy and sell.
type InstructionAccounts struct {
	Global                 solana.PublicKey
	FeeRecipient           solana.PublicKey
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	User                   solana.PublicKey
}

// NewInstructionAccounts derives the curve ATA and the user's ATA.
func NewInstructionAccounts(global, feeRecipient, mint, bondingCurve, user solana.PublicKey) (InstructionAccounts, error) {
	associatedBondingCurve, _, err := solana.FindAssociatedTokenAddress(bondingCurve, mint)
	if err != nil {
		return InstructionAccounts{}, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}
	return InstructionAccounts{
		Global:                 global,
		FeeRecipient:           feeRecipient,
		Mint:                   mint,
		BondingCurve:           bondingCurve,
		AssociatedBondingCurve: associatedBondingCurve,
		User:                   user,
	}, nil
}

func encodeArgs(discriminator []byte, a, b uint64) []byte {
	data := make([]byte, len(discriminator)+16)
	copy(data, discriminator)
	binary.LittleEndian.PutUint64(data[len(discriminator):], a)
	binary.LittleEndian.PutUint64(data[len(discriminator)+8:], b)
	return data
}

// BuildBuyTokenInstruction builds a buy instruction for Pump.fun protocol
func BuildBuyTokenInstruction(accounts InstructionAccounts, amount, maxSolCost uint64) (solana.Instruction, error) {
	associatedUser, _, err := solana.FindAssociatedTokenAddress(accounts.User, accounts.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get associated token account: %w", err)
	}

	// Account list must be in the exact order expected by the program
	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: associatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: PumpFunEventAuth, IsSigner: false, IsWritable: false},
		{PublicKey: PumpFunProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(PumpFunProgramID, insAccounts, encodeArgs(BuyDiscriminator, amount, maxSolCost)), nil
}

// BuildSellTokenInstruction builds a sell instruction for Pump.fun protocol
func BuildSellTokenInstruction(accounts InstructionAccounts, amount, minSolOutput uint64) (solana.Instruction, error) {
	associatedUser, _, err := solana.FindAssociatedTokenAddress(accounts.User, accounts.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get associated token account: %w", err)
	}

	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: associatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SPLAssociatedTokenAccountProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: PumpFunEventAuth, IsSigner: false, IsWritable: false},
		{PublicKey: PumpFunProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(PumpFunProgramID, insAccounts, encodeArgs(SellDiscriminator, amount, minSolOutput)), nil
}

// createAssociatedTokenAccountIdempotent creates the user's ATA unless it already exists.
func createAssociatedTokenAccountIdempotent(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	associatedAddress, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get associated token address: %w", err)
	}

	keys := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: associatedAddress, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
	}

	// 1 = CreateIdempotent
	return solana.NewInstruction(solana.SPLAssociatedTokenAccountProgramID, keys, []byte{1}), nil
}
