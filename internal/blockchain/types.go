// internal/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransactionOptions определяет опции для отправки транзакций.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// SimulationResult представляет результат симуляции транзакции.
type SimulationResult struct {
	Err           interface{}
	Logs          []string
	UnitsConsumed uint64
}

// Failed reports whether the simulated transaction would fail on-chain.
func (r *SimulationResult) Failed() bool {
	return r != nil && r.Err != nil
}

// LatestBlockhash is a recent blockhash and the last block height it stays valid for.
type LatestBlockhash struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// Client определяет общий интерфейс для взаимодействия с блокчейном.
type Client interface {
	// Получить последний blockhash.
	GetLatestBlockhash(ctx context.Context) (*LatestBlockhash, error)
	// Получить данные аккаунта.
	GetAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
	// Симулировать подписанную транзакцию с проверкой подписей.
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error)
	// Отправить транзакцию с опциями.
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	// Получить статусы подписей транзакций.
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	// Получить текущую высоту блока.
	GetBlockHeight(ctx context.Context) (uint64, error)
}
