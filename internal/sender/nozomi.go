// internal/sender/nozomi.go
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

// NozomiSender sends through Temporal's Nozomi relay. The API key travels in
// the query string.
type NozomiSender struct {
	*pipeline
	router     *Router
	transport  *relayTransport
	apiKey     string
	antiMEVKey string
}

func NewNozomiSender(cfg *config.Config, router *Router, deps Deps, logger *zap.Logger) *NozomiSender {
	return &NozomiSender{
		pipeline:   newPipeline(ProviderNozomi, deps, logger),
		router:     router,
		transport:  newRelayTransport(cfg.RelayRateLimit),
		apiKey:     cfg.NozomiAPIKey,
		antiMEVKey: cfg.NozomiAPIKeyAntiMEV,
	}
}

func (s *NozomiSender) Send(ctx context.Context, tx *transaction.Unsigned, signer wallet.Signer, opts SendOptions) (*SendResult, error) {
	return s.send(ctx, tx, signer, opts, s.submit)
}

// key prefers the anti-MEV key when anti-MEV is requested.
func (s *NozomiSender) key(antiMEV bool) string {
	if antiMEV && s.antiMEVKey != "" {
		return s.antiMEVKey
	}
	if s.apiKey != "" {
		return s.apiKey
	}
	return s.antiMEVKey
}

func (s *NozomiSender) submit(ctx context.Context, tx *solana.Transaction, encoded string, opts SendOptions) (solana.Signature, string, error) {
	region, base, err := s.router.Region(ProviderNozomi, opts.Region)
	if err != nil {
		return solana.Signature{}, "", err
	}
	key := s.key(opts.AntiMEV)
	if key == "" {
		return solana.Signature{}, region, errors.New("nozomi api key is not configured")
	}

	params := []interface{}{
		encoded,
		map[string]interface{}{"encoding": "base64", "skipPreflight": true},
	}
	result, err := s.transport.sendTransaction(ctx, base+key, nil, params)
	if err != nil {
		return solana.Signature{}, region, err
	}
	return relaySignature(s.logger, tx, result), region, nil
}
