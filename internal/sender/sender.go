// internal/sender/sender.go
package sender

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/blockchain"
	"github.com/rovshanmuradov/solana-trade-core/internal/blockchain/solbc"
	txmon "github.com/rovshanmuradov/solana-trade-core/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-trade-core/internal/transaction"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
	"github.com/rovshanmuradov/solana-trade-core/internal/utils/logger"
	"github.com/rovshanmuradov/solana-trade-core/internal/utils/metrics"
	"github.com/rovshanmuradov/solana-trade-core/internal/wallet"
)

// Sender signs, simulates, submits and confirms a transaction over one
// provider's transport.
type Sender interface {
	Provider() Provider
	Simulate(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error)
	Send(ctx context.Context, tx *transaction.Unsigned, signer wallet.Signer, opts SendOptions) (*SendResult, error)
}

// SendOptions управляет одной отправкой.
type SendOptions struct {
	SkipSimulation   bool
	SkipConfirmation bool
	// SkipPreflight applies to the standard RPC only; relays always skip it.
	SkipPreflight bool
	Region        string
	AntiMEV       bool
}

// SendResult is returned whenever the transaction reached the provider.
// ConfirmErr holds the confirmation failure, if any; the signature stays valid.
type SendResult struct {
	Signature  solana.Signature
	Provider   Provider
	Region     string
	Outcome    txmon.Outcome
	ConfirmErr error
}

// Deps are the collaborators shared by every sender.
type Deps struct {
	RPC     blockchain.Client
	Monitor *txmon.Monitor
	Metrics *metrics.Collector
}

// submitFunc hands the signed transaction to the provider and returns the
// signature and the region used.
type submitFunc func(ctx context.Context, tx *solana.Transaction, encoded string, opts SendOptions) (solana.Signature, string, error)

type pipeline struct {
	provider  Provider
	rpc       blockchain.Client
	monitor   *txmon.Monitor
	validator *txmon.Validator
	analyzer  *solbc.ErrorAnalyzer
	metrics   *metrics.Collector
	logger    *zap.Logger
}

func newPipeline(provider Provider, deps Deps, logger *zap.Logger) *pipeline {
	named := logger.Named("sender").With(zap.String("provider", string(provider)))
	return &pipeline{
		provider:  provider,
		rpc:       deps.RPC,
		monitor:   deps.Monitor,
		validator: txmon.NewValidator(named),
		analyzer:  solbc.NewErrorAnalyzer(named),
		metrics:   deps.Metrics,
		logger:    named,
	}
}

// Provider returns the provider name.
func (p *pipeline) Provider() Provider {
	return p.provider
}

// Simulate runs the node-side simulation with signature verification.
func (p *pipeline) Simulate(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error) {
	return p.rpc.SimulateTransaction(ctx, tx)
}

func (p *pipeline) send(ctx context.Context, unsigned *transaction.Unsigned, signer wallet.Signer, opts SendOptions, submit submitFunc) (*SendResult, error) {
	if unsigned == nil || len(unsigned.Instructions) == 0 {
		return nil, &types.ValidationError{Field: "transaction", Reason: "has no instructions"}
	}

	latest, err := p.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	prepared := *unsigned
	if prepared.FeePayer.IsZero() {
		prepared.FeePayer = signer.Address()
	}
	tx, err := prepared.Compile(latest.Blockhash)
	if err != nil {
		return nil, err
	}
	if err := signer.SignTransaction(tx); err != nil {
		return nil, err
	}
	if err := p.validator.ValidateTransaction(tx); err != nil {
		return nil, fmt.Errorf("signed transaction is invalid: %w", err)
	}
	txLog := logger.Wrap(p.logger).WithTransaction(tx.Signatures[0].String())

	if !opts.SkipSimulation {
		sim, err := p.Simulate(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("failed to simulate transaction: %w", err)
		}
		if failure := p.analyzer.SimulationFailure(sim); failure != nil {
			txLog.Error("Transaction simulation failed",
				zap.Any("error", failure.Err),
				zap.String("summary", failure.Summary),
				zap.Strings("logs", failure.Logs))
			p.metrics.RecordSubmission(string(p.provider), "simulation_failed", 0)
			return nil, failure
		}
		txLog.Debug("Simulation passed", zap.Uint64("units_consumed", sim.UnitsConsumed))
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	start := time.Now()
	signature, region, err := submit(ctx, tx, encoded, opts)
	if err != nil {
		p.metrics.RecordSubmission(string(p.provider), "rejected", time.Since(start))
		var failure *types.SimulationFailure
		if errors.As(err, &failure) {
			return nil, failure
		}
		return nil, &types.SubmissionError{
			Provider:  string(p.provider),
			Region:    region,
			Signature: tx.Signatures[0].String(),
			Err:       err,
		}
	}
	p.metrics.RecordSubmission(string(p.provider), "accepted", time.Since(start))

	txLog.Info("Transaction sent",
		zap.String("region", region),
		zap.Uint64("last_valid_block_height", latest.LastValidBlockHeight))

	result := &SendResult{
		Signature: signature,
		Provider:  p.provider,
		Region:    region,
		Outcome:   txmon.OutcomeSkipped,
	}
	if opts.SkipConfirmation || p.monitor == nil {
		return result, nil
	}

	confirmErr := p.monitor.Confirm(ctx, signature, latest.LastValidBlockHeight)
	result.Outcome = txmon.OutcomeOf(confirmErr)
	if confirmErr != nil {
		txLog.Warn("Could not confirm transaction, returning signature",
			zap.String("outcome", string(result.Outcome)),
			zap.Error(confirmErr))
		result.ConfirmErr = confirmErr
	}
	return result, nil
}

// relaySignature parses the relay result, falling back to the signature the
// transaction was signed with.
func relaySignature(logger *zap.Logger, tx *solana.Transaction, result string) solana.Signature {
	local := tx.Signatures[0]
	sig, err := solana.SignatureFromBase58(result)
	if err != nil {
		logger.Warn("Relay returned a malformed signature", zap.String("result", result), zap.Error(err))
		return local
	}
	if sig != local {
		logger.Warn("Relay signature differs from the signed one",
			zap.String("relay", sig.String()), zap.String("local", local.String()))
	}
	return sig
}
