// internal/sender/set.go
package sender

import (
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/config"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// Set holds one sender per provider whose credential is configured.
type Set struct {
	router  *Router
	senders map[Provider]Sender
}

// NewSet builds the standard sender plus a relay sender for every
// configured credential.
func NewSet(cfg *config.Config, router *Router, deps Deps, logger *zap.Logger) *Set {
	s := &Set{
		router:  router,
		senders: map[Provider]Sender{ProviderStandard: NewStandardSender(deps, logger)},
	}
	if cfg.HasJito() {
		s.senders[ProviderJito] = NewJitoSender(cfg, router, deps, logger)
	}
	if cfg.HasNozomi() {
		s.senders[ProviderNozomi] = NewNozomiSender(cfg, router, deps, logger)
	}
	if cfg.HasAstralane() {
		s.senders[ProviderAstralane] = NewAstralaneSender(cfg, router, deps, logger)
	}
	return s
}

// Router returns the router used by the relay senders.
func (s *Set) Router() *Router {
	return s.router
}

// Get returns the sender of a provider or ProviderUnavailable.
func (s *Set) Get(p Provider) (Sender, error) {
	if sender, ok := s.senders[p]; ok {
		return sender, nil
	}
	return nil, &types.ProviderUnavailable{Provider: string(p)}
}

var (
	_ Sender = (*StandardSender)(nil)
	_ Sender = (*JitoSender)(nil)
	_ Sender = (*NozomiSender)(nil)
	_ Sender = (*AstralaneSender)(nil)
)
