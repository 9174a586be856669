// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rovshanmuradov/solana-trade-core/internal/blockchain"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
	"github.com/rovshanmuradov/solana-trade-core/internal/utils/metrics"
)

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc     *rpc.Client
	logger  *zap.Logger
	metrics *metrics.Collector
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	rateLimit float64
	metrics   *metrics.Collector
}

// WithRateLimit caps outgoing requests per second; zero disables the limiter.
func WithRateLimit(rps float64) ClientOption {
	return func(o *clientOptions) { o.rateLimit = rps }
}

// WithMetrics records RPC latency per method.
func WithMetrics(c *metrics.Collector) ClientOption {
	return func(o *clientOptions) { o.metrics = c }
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger, opts ...ClientOption) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	var client *rpc.Client
	if o.rateLimit > 0 {
		burst := int(o.rateLimit)
		if burst < 1 {
			burst = 1
		}
		client = rpc.NewWithCustomRPCClient(rpc.NewWithLimiter(rpcURL, rate.Limit(o.rateLimit), burst))
	} else {
		client = rpc.New(rpcURL)
	}

	return &Client{
		rpc:     client,
		logger:  logger.Named("solbc-client"),
		metrics: o.metrics,
	}
}

func (c *Client) observe(method string, start time.Time) {
	c.metrics.RecordRPCLatency(method, time.Since(start))
}

// GetLatestBlockhash получает blockhash на уровне processed вместе с lastValidBlockHeight.
func (c *Client) GetLatestBlockhash(ctx context.Context) (*blockchain.LatestBlockhash, error) {
	defer c.observe("getLatestBlockhash", time.Now())

	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentProcessed)
	if err != nil {
		c.logger.Error("GetLatestBlockhash error", zap.Error(err))
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if result == nil || result.Value == nil {
		return nil, errors.New("failed to get latest blockhash: empty response")
	}
	return &blockchain.LatestBlockhash{
		Blockhash:            result.Value.Blockhash,
		LastValidBlockHeight: result.Value.LastValidBlockHeight,
	}, nil
}

// GetAccountInfo получает информацию об аккаунте. Отсутствующий аккаунт
// возвращается как *types.NotFoundError.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	defer c.observe("getAccountInfo", time.Now())

	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentProcessed,
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && (result == nil || result.Value == nil)) {
		return nil, &types.NotFoundError{Account: pubkey.String()}
	}
	if err != nil {
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get account %s: %w", pubkey, err)
	}
	return result, nil
}

// GetAccountData возвращает сырые байты аккаунта.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	info, err := c.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return nil, err
	}
	if info.Value.Data == nil {
		return nil, &types.NotFoundError{Account: pubkey.String()}
	}
	return info.Value.Data.GetBinary(), nil
}

// simulateResponse is decoded by hand so the call can set sigVerify.
type simulateResponse struct {
	Value struct {
		Err           interface{} `json:"err"`
		Logs          []string    `json:"logs"`
		UnitsConsumed *uint64     `json:"unitsConsumed"`
	} `json:"value"`
}

// SimulateTransaction симулирует подписанную транзакцию через сырой simulateTransaction.
// Подписи проверяются узлом: неполностью подписанная транзакция отклоняется.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error) {
	defer c.observe("simulateTransaction", time.Now())

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	params := []interface{}{
		base64.StdEncoding.EncodeToString(raw),
		map[string]interface{}{
			"encoding":   "base64",
			"commitment": rpc.CommitmentProcessed,
			"sigVerify":  true,
		},
	}

	var out simulateResponse
	if err := c.rpc.RPCCallForInto(ctx, &out, "simulateTransaction", params); err != nil {
		c.logger.Error("SimulateTransaction error", zap.Error(err))
		return nil, fmt.Errorf("simulateTransaction failed: %w", err)
	}

	units := uint64(0)
	if out.Value.UnitsConsumed != nil {
		units = *out.Value.UnitsConsumed
	}
	return &blockchain.SimulationResult{
		Err:           out.Value.Err,
		Logs:          out.Value.Logs,
		UnitsConsumed: units,
	}, nil
}

// SendTransactionWithOpts отправляет транзакцию с заданными опциями.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	defer c.observe("sendTransaction", time.Now())

	if opts.PreflightCommitment == "" {
		opts.PreflightCommitment = rpc.CommitmentProcessed
	}
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		c.logger.Error("SendTransactionWithOpts error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// GetSignatureStatuses получает статусы транзакций.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	defer c.observe("getSignatureStatuses", time.Now())

	result, err := c.rpc.GetSignatureStatuses(ctx, false, signatures...)
	if err != nil {
		c.logger.Debug("GetSignatureStatuses error", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// GetBlockHeight возвращает высоту блока на уровне confirmed.
func (c *Client) GetBlockHeight(ctx context.Context) (uint64, error) {
	defer c.observe("getBlockHeight", time.Now())
	return c.rpc.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
