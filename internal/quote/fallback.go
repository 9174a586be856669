// internal/quote/fallback.go
package quote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/amm"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

const defaultRequestTimeout = 5 * time.Second

// Fallback computes a quote through vendor code when the native path cannot.
type Fallback interface {
	Quote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error)
}

// venueLabels ограничивает маршрут агрегатора площадкой запроса.
var venueLabels = map[types.Market]string{
	types.MarketPumpFun:          "Pump.fun",
	types.MarketPumpSwap:         "Pump.fun Amm",
	types.MarketRaydiumAMM:       "Raydium",
	types.MarketRaydiumCLMM:      "Raydium CLMM",
	types.MarketRaydiumCPMM:      "Raydium CP",
	types.MarketRaydiumLaunchpad: "Raydium Launchlab",
	types.MarketMeteoraDLMM:      "Meteora DLMM",
	types.MarketMeteoraDAMMV1:    "Meteora",
	types.MarketMeteoraDAMMV2:    "Meteora DAMM v2",
	types.MarketMeteoraDBC:       "Meteora DBC",
	types.MarketOrcaWhirlpool:    "Whirlpool",
	types.MarketMoonit:           "Moonit",
}

// HTTPFallback is a client of a Jupiter-compatible /quote endpoint.
type HTTPFallback struct {
	client  *http.Client
	logger  *zap.Logger
	baseURL string
}

// quoteResponse is the subset of the /quote payload the engine needs.
// Amounts arrive as decimal strings.
type quoteResponse struct {
	InputMint            string      `json:"inputMint"`
	OutputMint           string      `json:"outputMint"`
	InAmount             string      `json:"inAmount"`
	OutAmount            string      `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SlippageBps          uint16      `json:"slippageBps"`
	PriceImpactPct       string      `json:"priceImpactPct"`
	RoutePlan            []routeStep `json:"routePlan"`
}

type routeStep struct {
	SwapInfo struct {
		AmmKey    string `json:"ammKey"`
		Label     string `json:"label"`
		FeeAmount string `json:"feeAmount"`
		FeeMint   string `json:"feeMint"`
	} `json:"swapInfo"`
	Percent int `json:"percent"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

// NewHTTPFallback создает клиент резервного котировщика.
func NewHTTPFallback(baseURL string, logger *zap.Logger) *HTTPFallback {
	return &HTTPFallback{
		client: &http.Client{
			Timeout: defaultRequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxConnsPerHost:     100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:  logger.Named("fallback-quoter"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Quote выполняет один запрос к API. Повторов нет: отказ возвращается вызывающему.
func (f *HTTPFallback) Quote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	params := url.Values{}
	params.Set("inputMint", req.InputMint.String())
	params.Set("outputMint", req.OutputMint.String())
	params.Set("amount", strconv.FormatUint(req.Amount, 10))
	params.Set("slippageBps", strconv.FormatUint(uint64(req.SlippageBps), 10))
	if label, ok := venueLabels[req.Market]; ok {
		params.Set("dexes", label)
	}
	endpoint := f.baseURL + "/quote?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	f.logger.Debug("fallback quote completed",
		zap.Duration("duration", time.Since(start)),
		zap.String("market", req.Market.String()),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if sonic.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("fallback quote rejected (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var payload quoteResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload.toQuote(req)
}

func (r *quoteResponse) toQuote(req model.QuoteRequest) (*model.Quote, error) {
	out, err := parseAmount("outAmount", r.OutAmount)
	if err != nil {
		return nil, err
	}
	minOut, err := parseAmount("otherAmountThreshold", r.OtherAmountThreshold)
	if err != nil {
		return nil, err
	}
	in := req.Amount
	if r.InAmount != "" {
		if in, err = parseAmount("inAmount", r.InAmount); err != nil {
			return nil, err
		}
	}

	// priceImpactPct у агрегатора это доля, а не проценты
	impact := 0.0
	if r.PriceImpactPct != "" {
		frac, err := strconv.ParseFloat(r.PriceImpactPct, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid priceImpactPct %q: %w", r.PriceImpactPct, err)
		}
		impact = frac * 100
	}
	if impact < 0 {
		impact = -impact
	}

	exec := amm.ScaledRatio(out, in)
	spot := exec
	if impact < 100 {
		spot = exec / (1 - impact/100)
	}

	// комиссии в разных токенах не складываются: считаем только в токене первого шага
	var fees model.Fees
	var pool model.PoolInfo
	feeMint := ""
	for i, step := range r.RoutePlan {
		if i == 0 && step.SwapInfo.AmmKey != "" {
			if key, err := solana.PublicKeyFromBase58(step.SwapInfo.AmmKey); err == nil {
				pool.Address = key
			}
		}
		if step.SwapInfo.FeeAmount == "" {
			continue
		}
		fee, err := strconv.ParseUint(step.SwapInfo.FeeAmount, 10, 64)
		if err != nil {
			continue
		}
		if feeMint == "" {
			feeMint = step.SwapInfo.FeeMint
		} else if step.SwapInfo.FeeMint != feeMint {
			continue
		}
		fees.TradeFee += fee
	}
	if key, err := solana.PublicKeyFromBase58(feeMint); err == nil {
		fees.Mint = key
	}
	fees.TotalFee = fees.TradeFee + fees.ProtocolFee

	return &model.Quote{
		Market:         req.Market,
		InAmount:       in,
		OutAmount:      out,
		MinOutAmount:   minOut,
		SlippageBps:    req.SlippageBps,
		SpotPrice:      spot,
		ExecutionPrice: exec,
		PriceImpactPct: amm.FormatPct(impact),
		Fees:           fees,
		Pool:           pool,
		Source:         model.SourceFallback,
	}, nil
}

func parseAmount(field, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return v, nil
}
