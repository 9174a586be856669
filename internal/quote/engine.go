// internal/quote/engine.go
package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/cache"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
	"github.com/rovshanmuradov/solana-trade-core/internal/utils/metrics"
)

// Engine computes quotes natively from account state and falls back to vendor
// code when the venue has no native decoder or its layout no longer decodes.
type Engine struct {
	natives  map[types.Market]model.NativeQuoter
	fallback Fallback
	pools    cache.Store
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithFallback sets the vendor quoter used when the native path cannot serve.
func WithFallback(f Fallback) Option {
	return func(e *Engine) { e.fallback = f }
}

// WithPoolCache lets the engine resolve and remember pool addresses per pair.
func WithPoolCache(store cache.Store) Option {
	return func(e *Engine) { e.pools = store }
}

// WithMetrics records quote counters and latency.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// NewEngine создает движок котировок.
func NewEngine(natives map[types.Market]model.NativeQuoter, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		natives: make(map[types.Market]model.NativeQuoter, len(natives)),
		logger:  logger.Named("quote-engine"),
	}
	for market, q := range natives {
		if q != nil {
			e.natives[market] = q
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// QuoteSwap builds a request from a token mint and a direction relative to SOL.
func (e *Engine) QuoteSwap(
	ctx context.Context,
	market types.Market,
	mint solana.PublicKey,
	direction types.Direction,
	amount uint64,
	slippageBps uint16,
	pool *solana.PublicKey,
) (*model.Quote, error) {
	req := model.QuoteRequest{
		Market:      market,
		Amount:      amount,
		SlippageBps: slippageBps,
		PoolAddress: pool,
	}
	switch direction {
	case types.DirectionBuy:
		req.InputMint, req.OutputMint = types.WSOL, mint
	case types.DirectionSell:
		req.InputMint, req.OutputMint = mint, types.WSOL
	default:
		return nil, &types.ValidationError{Field: "direction", Reason: fmt.Sprintf("unsupported direction %q", direction)}
	}
	return e.Quote(ctx, req)
}

// Quote validates the request, tries the native path and falls back on a
// DecodeError or a venue without a native quoter. Other errors are returned.
func (e *Engine) Quote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	native, ok := e.natives[req.Market]
	if !ok || !touchesNative(req) {
		e.logger.Warn("no native quoter, using fallback",
			zap.String("market", req.Market.String()),
			zap.String("input_mint", req.InputMint.String()),
			zap.String("output_mint", req.OutputMint.String()))
		return e.quoteFallback(ctx, req, nil, start)
	}

	req = e.resolvePool(ctx, req)
	q, err := native.Quote(ctx, req)
	if err == nil {
		e.metrics.RecordQuote(req.Market.String(), string(model.SourceNative), time.Since(start), nil)
		e.rememberPool(ctx, req, q)
		return q, nil
	}
	if !types.IsDecodeError(err) {
		e.metrics.RecordQuote(req.Market.String(), string(model.SourceNative), time.Since(start), err)
		return nil, err
	}

	e.logger.Warn("native quote failed to decode, using fallback",
		zap.String("market", req.Market.String()),
		zap.String("mint", req.TokenMint().String()),
		zap.Error(err))
	return e.quoteFallback(ctx, req, err, start)
}

func (e *Engine) quoteFallback(ctx context.Context, req model.QuoteRequest, nativeErr error, start time.Time) (*model.Quote, error) {
	if e.fallback == nil {
		err := fmt.Errorf("%s: %w", req.Market, types.ErrNoFallback)
		if nativeErr != nil {
			err = errors.Join(err, nativeErr)
		}
		e.metrics.RecordQuote(req.Market.String(), string(model.SourceFallback), time.Since(start), err)
		return nil, err
	}

	q, err := e.fallback.Quote(ctx, req)
	e.metrics.RecordQuote(req.Market.String(), string(model.SourceFallback), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fallback quote for %s: %w", req.Market, err)
	}
	q.Market = req.Market
	q.Source = model.SourceFallback
	return q, nil
}

// resolvePool подставляет адрес пула из кэша, если вызывающий его не передал.
func (e *Engine) resolvePool(ctx context.Context, req model.QuoteRequest) model.QuoteRequest {
	if req.PoolAddress != nil || e.pools == nil {
		return req
	}
	addr, ok := e.pools.ReadPair(ctx, poolNamespace(req.Market), pairKey(req))
	if !ok {
		return req
	}
	key, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		e.logger.Debug("ignoring malformed cached pool", zap.String("address", addr))
		return req
	}
	req.PoolAddress = &key
	return req
}

func (e *Engine) rememberPool(ctx context.Context, req model.QuoteRequest, q *model.Quote) {
	if e.pools == nil || q.Pool.Address.IsZero() {
		return
	}
	e.pools.WritePair(ctx, poolNamespace(req.Market), pairKey(req), q.Pool.Address.String())
}

func validateRequest(req model.QuoteRequest) error {
	if req.Amount == 0 {
		return &types.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if err := types.ValidateSlippageBps(req.SlippageBps); err != nil {
		return err
	}
	if req.InputMint.IsZero() || req.OutputMint.IsZero() {
		return &types.ValidationError{Field: "mint", Reason: "input and output mints are required"}
	}
	if req.InputMint.Equals(req.OutputMint) {
		return &types.ValidationError{Field: "mint", Reason: "input and output mints are equal"}
	}
	return nil
}

// touchesNative: нативные формулы считают только пары с SOL.
func touchesNative(req model.QuoteRequest) bool {
	return req.InputMint.Equals(types.WSOL) || req.OutputMint.Equals(types.WSOL)
}

func poolNamespace(market types.Market) string {
	return cache.MarketNamespace(market)
}

func pairKey(req model.QuoteRequest) string {
	return cache.PairKey(req.InputMint.String(), req.OutputMint.String())
}
