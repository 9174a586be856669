// internal/sender/standard.go
package sender

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/blockchain"
	"github.com/rovshanmuradov/solana-trade-core/internal/transaction"
	"github.com/rovshanmuradov/solana-trade-core/internal/wallet"
)

// StandardSender отправляет транзакции напрямую через RPC-узел.
type StandardSender struct {
	*pipeline
}

func NewStandardSender(deps Deps, logger *zap.Logger) *StandardSender {
	return &StandardSender{pipeline: newPipeline(ProviderStandard, deps, logger)}
}

// Send signs and submits via sendTransaction with processed preflight.
func (s *StandardSender) Send(ctx context.Context, tx *transaction.Unsigned, signer wallet.Signer, opts SendOptions) (*SendResult, error) {
	return s.send(ctx, tx, signer, opts, s.submit)
}

func (s *StandardSender) submit(ctx context.Context, tx *solana.Transaction, _ string, opts SendOptions) (solana.Signature, string, error) {
	sig, err := s.rpc.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		if failure := s.analyzer.AnalyzeRPCError(err); failure != nil {
			return solana.Signature{}, "", failure
		}
		return solana.Signature{}, "", err
	}
	return sig, "", nil
}
