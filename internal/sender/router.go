// internal/sender/router.go
package sender

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/config"
	"github.com/rovshanmuradov/solana-trade-core/internal/transaction"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// Router выбирает провайдера отправки, регион и адрес чаевых.
type Router struct {
	cfg      *config.Config
	policies map[Provider]TipPolicy
	pick     func(n int) int
	logger   *zap.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithPicker replaces the uniform random choice of regions and tip accounts.
func WithPicker(pick func(n int) int) RouterOption {
	return func(r *Router) { r.pick = pick }
}

// WithPolicy overrides the built-in table of one relay.
func WithPolicy(policy TipPolicy) RouterOption {
	return func(r *Router) { r.policies[policy.Provider] = policy }
}

// NewRouter создает маршрутизатор поверх конфигурации.
func NewRouter(cfg *config.Config, logger *zap.Logger, opts ...RouterOption) *Router {
	r := &Router{
		cfg:      cfg,
		policies: make(map[Provider]TipPolicy, len(policies)),
		pick:     rand.IntN,
		logger:   logger.Named("provider-router"),
	}
	for p, policy := range policies {
		r.policies[p] = policy
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Available returns a ProviderUnavailable error when the provider credential
// is missing. STANDARD is always available.
func (r *Router) Available(p Provider) error {
	var ok bool
	switch p {
	case ProviderStandard:
		ok = true
	case ProviderJito:
		ok = r.cfg.HasJito()
	case ProviderNozomi:
		ok = r.cfg.HasNozomi()
	case ProviderAstralane:
		ok = r.cfg.HasAstralane()
	}
	if !ok {
		return &types.ProviderUnavailable{Provider: string(p)}
	}
	return nil
}

// Choose picks the provider for a trade with the given tip in SOL.
// An empty explicit provider means automatic selection. Dust tips always go
// through the standard RPC.
func (r *Router) Choose(explicit Provider, tipSol float64) Provider {
	if math.IsNaN(tipSol) || tipSol < DustTipSOL {
		return ProviderStandard
	}

	if explicit != "" {
		if err := r.Available(explicit); err != nil {
			r.logger.Debug("Explicit provider unavailable, falling back", zap.Error(err))
		} else if explicit == ProviderNozomi && tipSol < HighGradeTipSOL {
			r.logger.Debug("Tip below Nozomi minimum, falling back",
				zap.Float64("tip_sol", tipSol))
		} else {
			return explicit
		}
	}

	switch {
	case tipSol >= HighGradeTipSOL && r.cfg.HasNozomi():
		return ProviderNozomi
	case r.cfg.HasAstralane():
		return ProviderAstralane
	case r.cfg.HasNozomi():
		return ProviderNozomi
	case r.cfg.HasJito():
		return ProviderJito
	}
	return ProviderStandard
}

// Region returns the region code and endpoint for a relay. An unknown or
// empty desired region selects one uniformly at random.
func (r *Router) Region(p Provider, desired string) (string, string, error) {
	policy, ok := r.policies[p]
	if !ok || len(policy.Regions) == 0 {
		return "", "", fmt.Errorf("provider %s has no regions", p)
	}
	code := strings.ToUpper(strings.TrimSpace(desired))
	if endpoint, ok := policy.Regions[code]; ok {
		return code, endpoint, nil
	}
	if code != "" {
		r.logger.Debug("Unknown region, picking at random",
			zap.String("provider", string(p)), zap.String("region", desired))
	}
	codes := policy.RegionCodes()
	code = codes[r.pick(len(codes))]
	return code, policy.Regions[code], nil
}

// ProviderTip returns a tip account and the tip in lamports, raised to the
// provider minimum.
func (r *Router) ProviderTip(p Provider, userTipSol float64) (solana.PublicKey, uint64, error) {
	policy, ok := r.policies[p]
	if !ok || len(policy.TipAccounts) == 0 {
		return solana.PublicKey{}, 0, fmt.Errorf("provider %s takes no tips", p)
	}
	tipSol := math.Max(userTipSol, policy.MinTipSOL)
	account := policy.TipAccounts[r.pick(len(policy.TipAccounts))]
	return account, types.SOLToLamports(tipSol), nil
}

// TipInstruction builds the provider tip transfer from the wallet.
func (r *Router) TipInstruction(p Provider, from solana.PublicKey, userTipSol float64) (solana.Instruction, error) {
	account, lamports, err := r.ProviderTip(p, userTipSol)
	if err != nil {
		return nil, err
	}
	return transaction.TipInstruction(from, account, lamports)
}
