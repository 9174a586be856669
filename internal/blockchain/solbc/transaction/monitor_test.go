package transaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// scriptedStatuses отдаёт статусы по очереди; последний повторяется.
type scriptedStatuses struct {
	mu       sync.Mutex
	statuses []*rpc.SignatureStatusesResult
	errs     []error
	height   uint64
	calls    int
}

func (s *scriptedStatuses) GetSignatureStatuses(_ context.Context, _ ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if len(s.statuses) == 0 {
		return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{nil}}, nil
	}
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{s.statuses[i]}}, nil
}

func (s *scriptedStatuses) GetBlockHeight(context.Context) (uint64, error) {
	return s.height, nil
}

func fastConfig() Config {
	return Config{Timeout: 200 * time.Millisecond, PollInterval: 5 * time.Millisecond}
}

func TestConfirmSucceeds(t *testing.T) {
	reader := &scriptedStatuses{
		statuses: []*rpc.SignatureStatusesResult{
			nil,
			{Slot: 10, ConfirmationStatus: rpc.ConfirmationStatusProcessed},
			{Slot: 10, ConfirmationStatus: rpc.ConfirmationStatusConfirmed},
		},
		errs: []error{nil, errors.New("rpc hiccup")},
	}
	m := NewMonitor(reader, zap.NewNop(), fastConfig(), nil)

	err := m.Confirm(context.Background(), solana.Signature{1}, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, OutcomeOf(err))
	assert.GreaterOrEqual(t, reader.calls, 3)
}

func TestConfirmProgramError(t *testing.T) {
	details := map[string]interface{}{"InstructionError": []interface{}{2, map[string]interface{}{"Custom": 6002}}}
	reader := &scriptedStatuses{
		statuses: []*rpc.SignatureStatusesResult{{Slot: 11, Err: details, ConfirmationStatus: rpc.ConfirmationStatusConfirmed}},
	}
	m := NewMonitor(reader, zap.NewNop(), fastConfig(), nil)

	err := m.Confirm(context.Background(), solana.Signature{2}, 0)
	var programErr *types.ProgramError
	require.ErrorAs(t, err, &programErr)
	assert.Equal(t, details, programErr.Details)
	assert.Equal(t, OutcomeProgramError, OutcomeOf(err))
	assert.Equal(t, 1, reader.calls, "a landed error is not retried")
}

func TestConfirmTimesOut(t *testing.T) {
	reader := &scriptedStatuses{}
	cfg := Config{Timeout: 45 * time.Millisecond, PollInterval: 5 * time.Millisecond}
	m := NewMonitor(reader, zap.NewNop(), cfg, nil)

	start := time.Now()
	err := m.Confirm(context.Background(), solana.Signature{3}, 0)

	require.Error(t, err)
	assert.True(t, types.IsConfirmationTimeout(err))
	assert.Equal(t, OutcomeTimedOut, OutcomeOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)

	var timeout *types.ConfirmationTimeout
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, solana.Signature{3}.String(), timeout.Signature)
}

func TestConfirmBlockhashExpired(t *testing.T) {
	reader := &scriptedStatuses{height: 200}
	m := NewMonitor(reader, zap.NewNop(), Config{Timeout: 5 * time.Second, PollInterval: 5 * time.Millisecond}, nil)

	start := time.Now()
	err := m.Confirm(context.Background(), solana.Signature{4}, 150)

	assert.True(t, types.IsConfirmationTimeout(err))
	assert.Less(t, time.Since(start), time.Second, "expiry stops polling early")
}

func TestConfirmParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMonitor(&scriptedStatuses{}, zap.NewNop(), fastConfig(), nil)
	err := m.Confirm(ctx, solana.Signature{5}, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeFailed, OutcomeOf(err))
}

func TestGetTransactionStatus(t *testing.T) {
	m := NewMonitor(&scriptedStatuses{
		statuses: []*rpc.SignatureStatusesResult{{Slot: 9, ConfirmationStatus: rpc.ConfirmationStatusFinalized}},
	}, zap.NewNop(), Config{}, nil)

	st, err := m.GetTransactionStatus(context.Background(), solana.Signature{6})
	require.NoError(t, err)
	assert.Equal(t, "finalized", st.Status)
	assert.Equal(t, uint64(9), st.Slot)
	assert.Equal(t, DefaultConfirmTimeout, m.config.Timeout)
}
