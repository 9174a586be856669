// internal/types/errors.go
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationError is returned for out-of-range input before any I/O happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError means a required on-chain account does not exist.
type NotFoundError struct {
	Account string
	What    string
}

func (e *NotFoundError) Error() string {
	if e.What != "" {
		return fmt.Sprintf("%s not found: %s", e.What, e.Account)
	}
	return fmt.Sprintf("account not found: %s", e.Account)
}

// DecodeError means account bytes did not match the expected layout.
type DecodeError struct {
	Venue  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s decode failed: %s", e.Venue, e.Reason)
}

// SimulationFailure means the transaction would fail on-chain.
type SimulationFailure struct {
	Err     interface{}
	Logs    []string
	Summary string
}

func (e *SimulationFailure) Error() string {
	msg := fmt.Sprintf("simulation failed: %v", e.Err)
	if e.Summary != "" {
		msg += " (" + e.Summary + ")"
	}
	if len(e.Logs) > 0 {
		msg += "\n" + strings.Join(e.Logs, "\n")
	}
	return msg
}

// SubmissionError is a transport or RPC level failure while sending.
type SubmissionError struct {
	Provider  string
	Region    string
	Signature string
	Err       error
}

func (e *SubmissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to send via %s", e.Provider)
	if e.Region != "" {
		fmt.Fprintf(&b, " [%s]", e.Region)
	}
	if e.Signature != "" {
		fmt.Fprintf(&b, " (signature %s)", e.Signature)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ConfirmationTimeout is soft: the transaction may still land.
type ConfirmationTimeout struct {
	Signature string
	After     time.Duration
}

func (e *ConfirmationTimeout) Error() string {
	return fmt.Sprintf("transaction %s not confirmed within %s", e.Signature, e.After)
}

// ProgramError means the transaction landed but a program returned an error.
type ProgramError struct {
	Signature string
	Details   interface{}
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("transaction %s confirmed with error: %v", e.Signature, e.Details)
}

// ProviderUnavailable means the credential for a relay is not configured.
type ProviderUnavailable struct {
	Provider string
}

func (e *ProviderUnavailable) Error() string {
	return fmt.Sprintf("provider %s is not configured", e.Provider)
}

var (
	ErrUnsupportedMarket = errors.New("market not supported")
	ErrCurveComplete     = errors.New("bonding curve is complete, token migrated")
	ErrNoFallback        = errors.New("no fallback quoter configured")
)

// IsDecodeError reports whether err carries a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConfirmationTimeout reports whether err carries a ConfirmationTimeout.
func IsConfirmationTimeout(err error) bool {
	var ct *ConfirmationTimeout
	return errors.As(err, &ct)
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
