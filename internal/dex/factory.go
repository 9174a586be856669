// =============================
// File: internal/dex/factory.go
// =============================
package dex

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// Registry maps every market to its capability. It is built once at startup
// and read-only afterwards.
type Registry struct {
	caps   map[types.Market]MarketCapability
	logger *zap.Logger
}

// NewRegistry проверяет, что все рынки известны и capability не nil.
func NewRegistry(caps map[types.Market]MarketCapability, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	known := make(map[types.Market]bool, len(types.Markets))
	for _, m := range types.Markets {
		known[m] = true
	}

	r := &Registry{caps: make(map[types.Market]MarketCapability, len(caps)), logger: logger.Named("market-registry")}
	for market, capability := range caps {
		if !known[market] {
			return nil, &types.ValidationError{Field: "market", Reason: fmt.Sprintf("unknown market %q", market)}
		}
		if capability == nil {
			return nil, fmt.Errorf("capability for %s cannot be nil", market)
		}
		r.caps[market] = capability
	}

	r.logger.Info("Market registry built", zap.Strings("markets", marketNames(r.Markets())))
	return r, nil
}

// Resolve returns the capability of market or ErrUnsupportedMarket.
func (r *Registry) Resolve(market types.Market) (MarketCapability, error) {
	capability, ok := r.caps[market]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no instruction builder", types.ErrUnsupportedMarket, market)
	}
	return capability, nil
}

// Markets lists registered markets in a stable order.
func (r *Registry) Markets() []types.Market {
	out := make([]types.Market, 0, len(r.caps))
	for m := range r.caps {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func marketNames(markets []types.Market) []string {
	names := make([]string, len(markets))
	for i, m := range markets {
		names[i] = m.String()
	}
	return names
}
