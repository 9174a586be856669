package dex

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

func stubCapability(program solana.PublicKey) CapabilityFuncs {
	build := func() ([]solana.Instruction, error) {
		return []solana.Instruction{solana.NewInstruction(program, nil, []byte{1})}, nil
	}
	return CapabilityFuncs{
		Buy:  func(context.Context, BuyParams) ([]solana.Instruction, error) { return build() },
		Sell: func(context.Context, SellParams) ([]solana.Instruction, error) { return build() },
	}
}

func TestRegistryResolve(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	reg, err := NewRegistry(map[types.Market]MarketCapability{
		types.MarketPumpSwap: stubCapability(program),
		types.MarketPumpFun:  stubCapability(program),
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []types.Market{types.MarketPumpFun, types.MarketPumpSwap}, reg.Markets())

	capability, err := reg.Resolve(types.MarketPumpFun)
	require.NoError(t, err)
	ixs, err := capability.GetBuyInstructions(context.Background(), BuyParams{InputAmountNative: 1})
	require.NoError(t, err)
	require.Len(t, ixs, 1)
	assert.Equal(t, program, ixs[0].ProgramID())

	_, err = reg.Resolve(types.MarketMoonit)
	assert.True(t, errors.Is(err, types.ErrUnsupportedMarket))
}

func TestNewRegistryRejectsInvalidEntries(t *testing.T) {
	_, err := NewRegistry(map[types.Market]MarketCapability{"UNISWAP": stubCapability(solana.PublicKey{})}, zap.NewNop())
	assert.True(t, types.IsValidationError(err))

	_, err = NewRegistry(map[types.Market]MarketCapability{types.MarketHeaven: nil}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewRegistry(nil, nil)
	assert.Error(t, err)
}
