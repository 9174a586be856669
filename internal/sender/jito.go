// internal/sender/jito.go
package sender

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/config"
	"github.com/rovshanmuradov/solana-trade-core/internal/transaction"
	"github.com/rovshanmuradov/solana-trade-core/internal/wallet"
)

// JitoSender отправляет транзакции в block engine Jito.
type JitoSender struct {
	*pipeline
	router    *Router
	transport *relayTransport
	uuid      string
}

func NewJitoSender(cfg *config.Config, router *Router, deps Deps, logger *zap.Logger) *JitoSender {
	s := &JitoSender{
		pipeline:  newPipeline(ProviderJito, deps, logger),
		router:    router,
		transport: newRelayTransport(cfg.RelayRateLimit),
		uuid:      cfg.JitoUUID,
	}
	if s.uuid == "" {
		s.logger.Warn("JITO_UUID not set; requests go without x-jito-auth")
	}
	return s
}

func (s *JitoSender) Send(ctx context.Context, tx *transaction.Unsigned, signer wallet.Signer, opts SendOptions) (*SendResult, error) {
	return s.send(ctx, tx, signer, opts, s.submit)
}

func (s *JitoSender) submit(ctx context.Context, tx *solana.Transaction, encoded string, opts SendOptions) (solana.Signature, string, error) {
	region, base, err := s.router.Region(ProviderJito, opts.Region)
	if err != nil {
		return solana.Signature{}, "", err
	}

	headers := map[string]string{}
	if s.uuid != "" {
		headers["x-jito-auth"] = s.uuid
	}
	params := []interface{}{
		encoded,
		map[string]interface{}{"encoding": "base64"},
	}
	result, err := s.transport.sendTransaction(ctx, base+"/api/v1/transactions", headers, params)
	if err != nil {
		return solana.Signature{}, region, err
	}
	return relaySignature(s.logger, tx, result), region, nil
}
