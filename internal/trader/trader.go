// internal/trader/trader.go
package trader

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/config"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/quote"
	"github.com/rovshanmuradov/solana-trade-core/internal/sender"
	"github.com/rovshanmuradov/solana-trade-core/internal/transaction"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
	"github.com/rovshanmuradov/solana-trade-core/internal/utils/logger"
	"github.com/rovshanmuradov/solana-trade-core/internal/wallet"
)

// TradeParams описывает одну сделку.
type TradeParams struct {
	Market types.Market
	Mint   solana.PublicKey
	// Amount is lamports for a buy and token base units for a sell.
	Amount          uint64
	SlippagePercent float64
	PriorityFeeSol  float64
	TipSol          float64
	// Provider is "" for automatic selection.
	Provider    sender.Provider
	Region      string
	AntiMEV     bool
	PoolAddress *solana.PublicKey
	Extra       []solana.Instruction

	SkipSimulation   bool
	SkipConfirmation bool
	// BuildOnly returns the unsigned transaction without sending it.
	BuildOnly bool
}

// TradeResult holds the assembled transaction and, when sent, the send result.
type TradeResult struct {
	Transaction *transaction.Unsigned
	Provider    sender.Provider
	Sent        *sender.SendResult
}

// Components are the collaborators a Trader is wired from.
type Components struct {
	Assembler *transaction.Assembler
	Senders   *sender.Set
	Quotes    *quote.Engine
	Prices    *quote.PriceResolver
}

// Trader связывает сборку транзакции, чаевые и отправку.
type Trader struct {
	cfg       *config.Config
	signer    wallet.Signer
	assembler *transaction.Assembler
	senders   *sender.Set
	router    *sender.Router
	quotes    *quote.Engine
	prices    *quote.PriceResolver
	logger    *logger.Logger
}

func New(cfg *config.Config, signer wallet.Signer, c Components, log *zap.Logger) *Trader {
	return &Trader{
		cfg:       cfg,
		signer:    signer,
		assembler: c.Assembler,
		senders:   c.Senders,
		router:    c.Senders.Router(),
		quotes:    c.Quotes,
		prices:    c.Prices,
		logger:    logger.Wrap(log.Named("trader")),
	}
}

// Buy spends Amount lamports on Mint.
func (t *Trader) Buy(ctx context.Context, p TradeParams) (*TradeResult, error) {
	return t.trade(ctx, types.DirectionBuy, p)
}

// Sell sells Amount token units of Mint for SOL.
func (t *Trader) Sell(ctx context.Context, p TradeParams) (*TradeResult, error) {
	return t.trade(ctx, types.DirectionSell, p)
}

func (t *Trader) trade(ctx context.Context, direction types.Direction, p TradeParams) (*TradeResult, error) {
	log := logger.Wrap(t.logger.WithOperation("trade_"+string(direction))).
		WithTrade(p.Market.String(), string(direction), p.Mint.String())

	slippage, err := types.NormalizeSlippagePercent(p.SlippagePercent)
	if err != nil {
		return nil, err
	}
	if p.Amount == 0 {
		return nil, &types.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	walletKey := t.signer.Address()
	provider := t.router.Choose(p.Provider, p.TipSol)

	tx, err := t.assembler.Build(ctx, transaction.BuildParams{
		Market:           p.Market,
		Direction:        direction,
		Wallet:           walletKey,
		Mint:             p.Mint,
		Amount:           p.Amount,
		SlippageFraction: slippage,
		PriorityFeeSol:   p.PriorityFeeSol,
		PoolAddress:      p.PoolAddress,
		Extra:            p.Extra,
	})
	if err != nil {
		return nil, err
	}

	if direction == types.DirectionBuy && !t.cfg.DisableDevTip {
		if lamports := transaction.DevTipLamports(p.Amount); lamports > 0 {
			ix, err := transaction.TipInstruction(walletKey, transaction.DevTipAddress, lamports)
			if err != nil {
				return nil, err
			}
			tx.Append(ix)
		}
	}

	if provider != sender.ProviderStandard && p.TipSol > 0 {
		ix, err := t.router.TipInstruction(provider, walletKey, p.TipSol)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s tip: %w", provider, err)
		}
		tx.Append(ix)
	}

	log.Info("Trade assembled",
		zap.Uint64("amount", p.Amount),
		zap.Float64("slippage", slippage),
		zap.String("provider", string(provider)),
		zap.Int("instructions", len(tx.Instructions)))

	result := &TradeResult{Transaction: tx, Provider: provider}
	if p.BuildOnly {
		return result, nil
	}

	s, err := t.senders.Get(provider)
	if err != nil {
		return nil, err
	}
	sent, err := s.Send(ctx, tx, t.signer, sender.SendOptions{
		SkipSimulation:   p.SkipSimulation,
		SkipConfirmation: p.SkipConfirmation,
		Region:           p.Region,
		AntiMEV:          p.AntiMEV,
	})
	if err != nil {
		return nil, err
	}
	result.Sent = sent

	log.Info("Trade sent",
		zap.String("signature", sent.Signature.String()),
		zap.String("outcome", string(sent.Outcome)),
		zap.String("region", sent.Region))
	return result, nil
}

// Quote prices a swap against SOL; slippage is in percent.
func (t *Trader) Quote(
	ctx context.Context,
	market types.Market,
	mint solana.PublicKey,
	direction types.Direction,
	amount uint64,
	slippagePercent float64,
	pool *solana.PublicKey,
) (*model.Quote, error) {
	defer t.logger.TrackPerformance("quote")()

	fraction, err := types.NormalizeSlippagePercent(slippagePercent)
	if err != nil {
		return nil, err
	}
	bps, err := types.FractionToBps(fraction)
	if err != nil {
		return nil, err
	}
	return t.quotes.QuoteSwap(ctx, market, mint, direction, amount, bps, pool)
}

// Price returns the spot price of a token on a venue.
func (t *Trader) Price(ctx context.Context, market types.Market, mint solana.PublicKey, unit quote.Unit) (*quote.Price, error) {
	return t.prices.GetPrice(ctx, market, mint, unit)
}
