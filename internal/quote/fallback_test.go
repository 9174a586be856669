package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

const quoteBody = `{
  "inputMint": "So11111111111111111111111111111111111111112",
  "inAmount": "10000000",
  "outputMint": "7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr",
  "outAmount": "353973188848",
  "otherAmountThreshold": "350433456959",
  "swapMode": "ExactIn",
  "slippageBps": 100,
  "priceImpactPct": "0.0103",
  "routePlan": [
    {
      "swapInfo": {
        "ammKey": "8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj",
        "label": "Pump.fun",
        "feeAmount": "100000",
        "feeMint": "So11111111111111111111111111111111111111112"
      },
      "percent": 100
    }
  ]
}`

func TestHTTPFallbackQuote(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	f := NewHTTPFallback(srv.URL+"/", zap.NewNop())
	q, err := f.Quote(context.Background(), buyRequest(types.MarketPumpFun))
	require.NoError(t, err)

	assert.Equal(t, types.WSOL.String(), query["inputMint"])
	assert.Equal(t, testMint.String(), query["outputMint"])
	assert.Equal(t, "10000000", query["amount"])
	assert.Equal(t, "100", query["slippageBps"])
	assert.Equal(t, "Pump.fun", query["dexes"])

	assert.Equal(t, model.SourceFallback, q.Source)
	assert.Equal(t, uint64(10_000_000), q.InAmount)
	assert.Equal(t, uint64(353_973_188_848), q.OutAmount)
	assert.Equal(t, uint64(350_433_456_959), q.MinOutAmount)
	assert.InDelta(t, 35397.3188848, q.ExecutionPrice, 1e-6)
	assert.Greater(t, q.SpotPrice, q.ExecutionPrice)
	assert.Equal(t, "1.0300", q.PriceImpactPct)
	assert.Equal(t, uint64(100_000), q.Fees.TotalFee)
	assert.Equal(t, types.WSOL, q.Fees.Mint)
	assert.Equal(t, testPool, q.Pool.Address)
}

const multiHopBody = `{
  "inAmount": "10000000",
  "outAmount": "5000",
  "otherAmountThreshold": "4950",
  "priceImpactPct": "0",
  "routePlan": [
    {"swapInfo": {"ammKey": "8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj", "feeAmount": "25000", "feeMint": "So11111111111111111111111111111111111111112"}, "percent": 100},
    {"swapInfo": {"ammKey": "7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr", "feeAmount": "900000", "feeMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}, "percent": 100},
    {"swapInfo": {"ammKey": "7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr", "feeAmount": "5000", "feeMint": "So11111111111111111111111111111111111111112"}, "percent": 100}
  ]
}`

func TestHTTPFallbackFeesInOneMint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(multiHopBody))
	}))
	defer srv.Close()

	q, err := NewHTTPFallback(srv.URL, zap.NewNop()).Quote(context.Background(), buyRequest(types.MarketPumpFun))
	require.NoError(t, err)

	// USDC-комиссия второго шага не складывается с SOL
	assert.Equal(t, uint64(30_000), q.Fees.TradeFee)
	assert.Equal(t, uint64(30_000), q.Fees.TotalFee)
	assert.Equal(t, types.WSOL, q.Fees.Mint)
}

func TestHTTPFallbackNoVenueFilter(t *testing.T) {
	var hasDexes bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasDexes = r.URL.Query().Has("dexes")
		_, _ = w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	_, err := NewHTTPFallback(srv.URL, zap.NewNop()).Quote(context.Background(), buyRequest(types.MarketSugar))
	require.NoError(t, err)
	assert.False(t, hasDexes)
}

func TestHTTPFallbackErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "api error", status: http.StatusBadRequest, body: `{"error":"Could not find any route","errorCode":"COULD_NOT_FIND_ANY_ROUTE"}`, want: "Could not find any route"},
		{name: "plain error", status: http.StatusBadGateway, body: `bad gateway`, want: "unexpected status code: 502"},
		{name: "bad amount", status: http.StatusOK, body: `{"outAmount":"lots","otherAmountThreshold":"1"}`, want: "invalid outAmount"},
		{name: "bad json", status: http.StatusOK, body: `{`, want: "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPFallback(srv.URL, zap.NewNop()).Quote(context.Background(), buyRequest(types.MarketPumpFun))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
