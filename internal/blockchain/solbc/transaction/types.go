// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

var (
	ErrInvalidSignature   = errors.New("invalid transaction signature")
	ErrInvalidBlockhash   = errors.New("invalid blockhash")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrMissingFeePayer    = errors.New("transaction has no fee payer")

	errPending          = errors.New("transaction not confirmed yet")
	errBlockhashExpired = errors.New("block height exceeded")
)

const (
	DefaultConfirmTimeout = 45 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
)

// Config управляет ожиданием подтверждения.
type Config struct {
	Timeout      time.Duration
	PollInterval time.Duration
	Commitment   rpc.ConfirmationStatusType
}

// DefaultConfig waits up to 45s for the confirmed commitment.
func DefaultConfig() Config {
	return Config{
		Timeout:      DefaultConfirmTimeout,
		PollInterval: DefaultPollInterval,
		Commitment:   rpc.ConfirmationStatusConfirmed,
	}
}

// Outcome is the terminal state of a submitted transaction.
type Outcome string

const (
	OutcomeConfirmed    Outcome = "confirmed"
	OutcomeProgramError Outcome = "confirmed_with_error"
	OutcomeTimedOut     Outcome = "timed_out"
	OutcomeFailed       Outcome = "failed"
	OutcomeSkipped      Outcome = "skipped"
)

// OutcomeOf classifies the error returned by Monitor.Confirm.
func OutcomeOf(err error) Outcome {
	var programErr *types.ProgramError
	switch {
	case err == nil:
		return OutcomeConfirmed
	case errors.As(err, &programErr):
		return OutcomeProgramError
	case types.IsConfirmationTimeout(err):
		return OutcomeTimedOut
	default:
		return OutcomeFailed
	}
}

type Status struct {
	Signature     string
	Status        string
	Confirmations uint64
	Slot          uint64
	Error         string
	Timestamp     time.Time
}
