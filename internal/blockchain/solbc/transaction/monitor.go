// internal/blockchain/solbc/transaction/monitor.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
	"github.com/rovshanmuradov/solana-trade-core/internal/utils/metrics"
)

// StatusReader is the part of the RPC client the monitor polls.
type StatusReader interface {
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBlockHeight(ctx context.Context) (uint64, error)
}

type Monitor struct {
	client  StatusReader
	logger  *zap.Logger
	config  Config
	metrics *metrics.Collector
}

func NewMonitor(client StatusReader, logger *zap.Logger, config Config, collector *metrics.Collector) *Monitor {
	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.Commitment == "" {
		config.Commitment = defaults.Commitment
	}
	return &Monitor{
		client:  client,
		logger:  logger.Named("tx-monitor"),
		config:  config,
		metrics: collector,
	}
}

// Confirm опрашивает статус подписи до подтверждения или таймаута.
// Returns nil when the transaction landed cleanly, *types.ProgramError when it
// landed with an error and *types.ConfirmationTimeout when the deadline passed
// or the blockhash expired first.
func (m *Monitor) Confirm(ctx context.Context, signature solana.Signature, lastValidBlockHeight uint64) error {
	start := time.Now()
	pollCtx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	operation := func() (struct{}, error) {
		return struct{}{}, m.poll(pollCtx, signature, lastValidBlockHeight)
	}

	_, err := backoff.Retry(pollCtx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(m.config.PollInterval)),
		backoff.WithMaxElapsedTime(m.config.Timeout))

	err = m.classify(ctx, signature, err)
	m.metrics.RecordConfirmation(string(OutcomeOf(err)), time.Since(start))
	return err
}

func (m *Monitor) poll(ctx context.Context, signature solana.Signature, lastValidBlockHeight uint64) error {
	response, err := m.client.GetSignatureStatuses(ctx, signature)
	if err != nil {
		m.logger.Debug("Confirmation check failed", zap.Error(err))
		return fmt.Errorf("failed to get signature status: %w", err)
	}

	if response != nil && len(response.Value) > 0 && response.Value[0] != nil {
		status := response.Value[0]
		if status.Err != nil {
			return backoff.Permanent(&types.ProgramError{Signature: signature.String(), Details: status.Err})
		}
		if m.reached(status.ConfirmationStatus) {
			return nil
		}
		return errPending
	}

	// ещё не виден: проверяем, не истёк ли blockhash
	if lastValidBlockHeight > 0 {
		height, err := m.client.GetBlockHeight(ctx)
		if err == nil && height > lastValidBlockHeight {
			return backoff.Permanent(errBlockhashExpired)
		}
	}
	return errPending
}

func (m *Monitor) reached(status rpc.ConfirmationStatusType) bool {
	switch m.config.Commitment {
	case rpc.ConfirmationStatusProcessed:
		return status != ""
	case rpc.ConfirmationStatusFinalized:
		return status == rpc.ConfirmationStatusFinalized
	default:
		return status == rpc.ConfirmationStatusConfirmed || status == rpc.ConfirmationStatusFinalized
	}
}

func (m *Monitor) classify(parent context.Context, signature solana.Signature, err error) error {
	if err == nil {
		return nil
	}

	var programErr *types.ProgramError
	if errors.As(err, &programErr) {
		m.logger.Warn("Transaction confirmed with program error",
			zap.String("signature", signature.String()),
			zap.Any("details", programErr.Details))
		return programErr
	}

	if parentErr := parent.Err(); parentErr != nil {
		return parentErr
	}

	if errors.Is(err, errBlockhashExpired) {
		m.logger.Warn("Blockhash expired before confirmation", zap.String("signature", signature.String()))
	} else {
		m.logger.Warn("Transaction not confirmed before timeout",
			zap.String("signature", signature.String()),
			zap.Duration("timeout", m.config.Timeout),
			zap.Error(err))
	}
	return &types.ConfirmationTimeout{Signature: signature.String(), After: m.config.Timeout}
}

// GetTransactionStatus returns a single status snapshot without waiting.
func (m *Monitor) GetTransactionStatus(ctx context.Context, signature solana.Signature) (*Status, error) {
	response, err := m.client.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction status: %w", err)
	}

	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return &Status{
			Signature: signature.String(),
			Status:    "pending",
			Timestamp: time.Now(),
		}, nil
	}

	status := response.Value[0]
	txStatus := &Status{
		Signature: signature.String(),
		Timestamp: time.Now(),
		Slot:      status.Slot,
	}

	if status.Confirmations != nil {
		txStatus.Confirmations = *status.Confirmations
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		txStatus.Status = "finalized"
	case rpc.ConfirmationStatusConfirmed:
		txStatus.Status = "confirmed"
	default:
		txStatus.Status = "pending"
	}

	if status.Err != nil {
		txStatus.Error = fmt.Sprintf("%v", status.Err)
		txStatus.Status = "failed"
	}

	return txStatus, nil
}
