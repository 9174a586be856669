// =============================
// File: internal/dex/pumpfun/capability.go
// =============================
package pumpfun

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/amm"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// Capability builds Pump.fun buy and sell instructions from live curve state.
type Capability struct {
	quoter *Quoter
}

// NewCapability creates the Pump.fun dex.MarketCapability.
func NewCapability(quoter *Quoter) *Capability {
	return &Capability{quoter: quoter}
}

var _ dex.MarketCapability = (*Capability)(nil)

func (c *Capability) accounts(ctx context.Context, mint, user solana.PublicKey) (InstructionAccounts, *BondingCurve, error) {
	global, globalAddr, err := c.quoter.FetchGlobalAccount(ctx)
	if err != nil {
		return InstructionAccounts{}, nil, err
	}
	curve, curveAddr, err := c.quoter.FetchBondingCurve(ctx, mint)
	if err != nil {
		return InstructionAccounts{}, nil, err
	}
	accounts, err := NewInstructionAccounts(globalAddr, global.FeeRecipient, mint, curveAddr, user)
	if err != nil {
		return InstructionAccounts{}, nil, err
	}
	return accounts, curve, nil
}

// GetBuyInstructions: ATA (idempotent) + buy with token amount at the
// slippage floor and SOL cost capped at input plus slippage.
func (c *Capability) GetBuyInstructions(ctx context.Context, params dex.BuyParams) ([]solana.Instruction, error) {
	bps, err := types.FractionToBps(params.SlippageFraction)
	if err != nil {
		return nil, err
	}
	accounts, curve, err := c.accounts(ctx, params.Mint, params.Wallet)
	if err != nil {
		return nil, err
	}

	quote, err := QuoteFromCurve(curve, accounts.BondingCurve, model.QuoteRequest{
		Market:      types.MarketPumpFun,
		InputMint:   types.WSOL,
		OutputMint:  params.Mint,
		Amount:      params.InputAmountNative,
		SlippageBps: bps,
	})
	if err != nil {
		return nil, err
	}
	maxSolCost := amm.MaximumInput(params.InputAmountNative, bps)

	ataIx, err := createAssociatedTokenAccountIdempotent(params.Wallet, params.Wallet, params.Mint)
	if err != nil {
		return nil, err
	}
	buyIx, err := BuildBuyTokenInstruction(accounts, quote.MinOutAmount, maxSolCost)
	if err != nil {
		return nil, err
	}

	c.quoter.logger.Debug("Buy instructions built",
		zap.String("mint", params.Mint.String()),
		zap.Uint64("token_amount", quote.MinOutAmount),
		zap.Uint64("max_sol_cost", maxSolCost))
	return []solana.Instruction{ataIx, buyIx}, nil
}

// GetSellInstructions: sell with SOL output at the slippage floor.
func (c *Capability) GetSellInstructions(ctx context.Context, params dex.SellParams) ([]solana.Instruction, error) {
	bps, err := types.FractionToBps(params.SlippageFraction)
	if err != nil {
		return nil, err
	}
	if params.InputAmountToken == 0 {
		return nil, &types.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	accounts, curve, err := c.accounts(ctx, params.Mint, params.Wallet)
	if err != nil {
		return nil, err
	}

	quote, err := QuoteFromCurve(curve, accounts.BondingCurve, model.QuoteRequest{
		Market:      types.MarketPumpFun,
		InputMint:   params.Mint,
		OutputMint:  types.WSOL,
		Amount:      params.InputAmountToken,
		SlippageBps: bps,
	})
	if err != nil {
		return nil, err
	}

	sellIx, err := BuildSellTokenInstruction(accounts, params.InputAmountToken, quote.MinOutAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to build sell instruction: %w", err)
	}
	return []solana.Instruction{sellIx}, nil
}
