// =============================
// File: internal/dex/dex.go
// =============================
package dex

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// BuyParams описывает покупку токена за нативный SOL.
type BuyParams struct {
	Mint              solana.PublicKey
	Wallet            solana.PublicKey
	InputAmountNative uint64  // лампорты
	SlippageFraction  float64 // 0..1
	PoolAddress       *solana.PublicKey
}

// SellParams описывает продажу токена за нативный SOL.
type SellParams struct {
	Mint             solana.PublicKey
	Wallet           solana.PublicKey
	InputAmountToken uint64 // минимальные единицы токена
	SlippageFraction float64
	PoolAddress      *solana.PublicKey
}

// MarketCapability builds venue swap instructions. One implementation per
// market; the core depends only on this shape.
type MarketCapability interface {
	GetBuyInstructions(ctx context.Context, params BuyParams) ([]solana.Instruction, error)
	GetSellInstructions(ctx context.Context, params SellParams) ([]solana.Instruction, error)
}

// CapabilityFuncs adapts plain functions to MarketCapability.
type CapabilityFuncs struct {
	Buy  func(ctx context.Context, params BuyParams) ([]solana.Instruction, error)
	Sell func(ctx context.Context, params SellParams) ([]solana.Instruction, error)
}

func (f CapabilityFuncs) GetBuyInstructions(ctx context.Context, params BuyParams) ([]solana.Instruction, error) {
	return f.Buy(ctx, params)
}

func (f CapabilityFuncs) GetSellInstructions(ctx context.Context, params SellParams) ([]solana.Instruction, error) {
	return f.Sell(ctx, params)
}
