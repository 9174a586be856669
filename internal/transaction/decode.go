// internal/transaction/decode.go
package transaction

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// FromBase64 decodes a serialized transaction and returns its instructions
// as an Unsigned. Existing signatures and the blockhash are dropped.
func FromBase64(encoded string) (*Unsigned, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return FromTransaction(tx)
}

// FromTransaction decompiles the message of tx. Transactions that use address
// lookup tables are rejected.
func FromTransaction(tx *solana.Transaction) (*Unsigned, error) {
	msg := &tx.Message
	if len(msg.AddressTableLookups) > 0 {
		return nil, errors.New("transactions with address lookup tables are not supported")
	}
	if len(msg.AccountKeys) == 0 {
		return nil, errors.New("transaction has no accounts")
	}

	out := &Unsigned{FeePayer: msg.AccountKeys[0]}
	for i, ci := range msg.Instructions {
		if int(ci.ProgramIDIndex) >= len(msg.AccountKeys) {
			return nil, fmt.Errorf("instruction %d: program index %d out of range", i, ci.ProgramIDIndex)
		}
		accounts := make(solana.AccountMetaSlice, 0, len(ci.Accounts))
		for _, idx := range ci.Accounts {
			if int(idx) >= len(msg.AccountKeys) {
				return nil, fmt.Errorf("instruction %d: account index %d out of range", i, idx)
			}
			accounts = append(accounts, &solana.AccountMeta{
				PublicKey:  msg.AccountKeys[idx],
				IsSigner:   isSigner(msg, int(idx)),
				IsWritable: isWritable(msg, int(idx)),
			})
		}
		out.Append(solana.NewInstruction(msg.AccountKeys[ci.ProgramIDIndex], accounts, ci.Data))
	}
	return out, nil
}

// Порядок ключей в legacy-сообщении: подписанты (сначала writable), затем
// остальные (сначала writable).
func isSigner(msg *solana.Message, idx int) bool {
	return idx < int(msg.Header.NumRequiredSignatures)
}

func isWritable(msg *solana.Message, idx int) bool {
	signers := int(msg.Header.NumRequiredSignatures)
	if idx < signers {
		return idx < signers-int(msg.Header.NumReadonlySignedAccounts)
	}
	unsignedWritable := len(msg.AccountKeys) - signers - int(msg.Header.NumReadonlyUnsignedAccounts)
	return idx-signers < unsignedWritable
}
