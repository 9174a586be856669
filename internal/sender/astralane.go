// internal/sender/astralane.go
package sender

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/config"
	"github.com/rovshanmuradov/solana-trade-core/internal/transaction"
	"github.com/rovshanmuradov/solana-trade-core/internal/wallet"
)

// AstralaneSender sends through the Astralane gateway.
type AstralaneSender struct {
	*pipeline
	router    *Router
	transport *relayTransport
	apiKey    string
}

func NewAstralaneSender(cfg *config.Config, router *Router, deps Deps, logger *zap.Logger) *AstralaneSender {
	return &AstralaneSender{
		pipeline:  newPipeline(ProviderAstralane, deps, logger),
		router:    router,
		transport: newRelayTransport(cfg.RelayRateLimit),
		apiKey:    cfg.AstralaneAPIKey,
	}
}

func (s *AstralaneSender) Send(ctx context.Context, tx *transaction.Unsigned, signer wallet.Signer, opts SendOptions) (*SendResult, error) {
	return s.send(ctx, tx, signer, opts, s.submit)
}

func (s *AstralaneSender) submit(ctx context.Context, tx *solana.Transaction, encoded string, opts SendOptions) (solana.Signature, string, error) {
	region, endpoint, err := s.router.Region(ProviderAstralane, opts.Region)
	if err != nil {
		return solana.Signature{}, "", err
	}
	if s.apiKey == "" {
		return solana.Signature{}, region, errors.New("astralane api key is not configured")
	}

	// третий параметр включает защиту от MEV
	params := []interface{}{
		encoded,
		map[string]interface{}{"encoding": "base64", "skipPreflight": true},
		map[string]interface{}{"mevProtect": opts.AntiMEV},
	}
	result, err := s.transport.sendTransaction(ctx, endpoint, map[string]string{"api_key": s.apiKey}, params)
	if err != nil {
		return solana.Signature{}, region, err
	}
	return relaySignature(s.logger, tx, result), region, nil
}
