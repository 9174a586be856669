// =============================
// File: internal/dex/pumpswap/pool.go
// =============================
package pumpswap

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// ReadyPool is a pool that exists and decodes.
type ReadyPool struct {
	Address solana.PublicKey
	State   *PoolState
}

// WaitForPool ждёт появления только что созданного пула.
// Missing and undecodable accounts are retried every PoolReadyPollInterval
// until timeout; any other error stops the wait immediately.
func (q *Quoter) WaitForPool(ctx context.Context, mint solana.PublicKey, timeout time.Duration) (*ReadyPool, error) {
	if timeout <= 0 {
		timeout = DefaultPoolReadyTimeout
	}
	return q.waitForPool(ctx, mint, timeout, PoolReadyPollInterval)
}

func (q *Quoter) waitForPool(ctx context.Context, mint solana.PublicKey, timeout, poll time.Duration) (*ReadyPool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	operation := func() (*ReadyPool, error) {
		pool, addr, err := q.FetchPool(ctx, mint)
		if err != nil {
			if types.IsNotFound(err) || types.IsDecodeError(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return &ReadyPool{Address: addr, State: pool}, nil
	}

	notify := func(err error, d time.Duration) {
		q.logger.Debug("Пул ещё не готов", zap.String("mint", mint.String()), zap.Error(err), zap.Duration("backoff", d))
	}

	ready, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(poll)),
		backoff.WithMaxElapsedTime(timeout),
		backoff.WithNotify(notify))
	if err != nil {
		q.logger.Warn("Pool not ready before timeout",
			zap.String("mint", mint.String()),
			zap.Duration("timeout", timeout),
			zap.Error(err))
		return nil, fmt.Errorf("pumpswap pool for %s not ready after %s: %w", mint, timeout, err)
	}
	return ready, nil
}
