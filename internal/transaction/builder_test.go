package transaction

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/cache"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

var (
	testWallet = solana.MustPublicKeyFromBase58("7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr")
	testMint   = solana.MustPublicKeyFromBase58("8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj")
	swapProg   = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
)

type staticResolver map[types.Market]dex.MarketCapability

func (r staticResolver) Resolve(market types.Market) (dex.MarketCapability, error) {
	c, ok := r[market]
	if !ok {
		return nil, types.ErrUnsupportedMarket
	}
	return c, nil
}

func swapInstruction(tag byte) solana.Instruction {
	return solana.NewInstruction(swapProg, solana.AccountMetaSlice{solana.Meta(testWallet).SIGNER().WRITE()}, []byte{tag})
}

func recordingCapability(seen *dex.BuyParams) dex.CapabilityFuncs {
	return dex.CapabilityFuncs{
		Buy: func(_ context.Context, p dex.BuyParams) ([]solana.Instruction, error) {
			*seen = p
			return []solana.Instruction{swapInstruction(1)}, nil
		},
		Sell: func(_ context.Context, p dex.SellParams) ([]solana.Instruction, error) {
			return []solana.Instruction{swapInstruction(2), swapInstruction(3)}, nil
		},
	}
}

func TestBuildOrder(t *testing.T) {
	var seen dex.BuyParams
	a := NewAssembler(staticResolver{types.MarketPumpFun: recordingCapability(&seen)}, zap.NewNop())
	extra := swapInstruction(9)
	pool := testMint

	tx, err := a.Build(context.Background(), BuildParams{
		Market:           types.MarketPumpFun,
		Direction:        types.DirectionBuy,
		Wallet:           testWallet,
		Mint:             testMint,
		Amount:           10_000_000,
		SlippageFraction: 0.01,
		PriorityFeeSol:   0.0001,
		PoolAddress:      &pool,
		Extra:            []solana.Instruction{extra},
	})
	require.NoError(t, err)
	require.Len(t, tx.Instructions, 4)

	assert.Equal(t, computebudget.ProgramID, tx.Instructions[0].ProgramID())
	assert.Equal(t, computebudget.ProgramID, tx.Instructions[1].ProgramID())
	assert.Equal(t, swapProg, tx.Instructions[2].ProgramID())
	assert.Equal(t, extra, tx.Instructions[3])

	limit, err := tx.Instructions[0].Data()
	require.NoError(t, err)
	assert.Equal(t, byte(2), limit[0])
	assert.Equal(t, uint32(1_000_000), binary.LittleEndian.Uint32(limit[1:]))

	price, err := tx.Instructions[1].Data()
	require.NoError(t, err)
	assert.Equal(t, byte(3), price[0])
	assert.Equal(t, uint64(100_000), binary.LittleEndian.Uint64(price[1:]))

	// параметры передаются без изменений
	assert.Equal(t, uint64(10_000_000), seen.InputAmountNative)
	assert.Equal(t, 0.01, seen.SlippageFraction)
	assert.Equal(t, &pool, seen.PoolAddress)
	assert.Equal(t, testWallet, tx.FeePayer)
}

func TestBuildSell(t *testing.T) {
	var seen dex.BuyParams
	a := NewAssembler(staticResolver{types.MarketPumpFun: recordingCapability(&seen)}, zap.NewNop())

	tx, err := a.Build(context.Background(), BuildParams{
		Market:           types.MarketPumpFun,
		Direction:        types.DirectionSell,
		Wallet:           testWallet,
		Mint:             testMint,
		Amount:           5,
		SlippageFraction: 0,
	})
	require.NoError(t, err)
	assert.Len(t, tx.Instructions, 4)

	compiled, err := tx.Compile(solana.Hash{1})
	require.NoError(t, err)
	assert.Equal(t, testWallet, compiled.Message.AccountKeys[0])
	assert.Len(t, compiled.Message.Instructions, 4)
}

func TestBuildDefaultPriorityFee(t *testing.T) {
	var seen dex.BuyParams
	a := NewAssembler(staticResolver{types.MarketPumpFun: recordingCapability(&seen)}, zap.NewNop())

	tx, err := a.Build(context.Background(), BuildParams{
		Market:    types.MarketPumpFun,
		Direction: types.DirectionBuy,
		Wallet:    testWallet,
		Mint:      testMint,
		Amount:    1_000,
	})
	require.NoError(t, err)

	price, err := tx.Instructions[1].Data()
	require.NoError(t, err)
	// 0.0001 SOL на 1_000_000 units
	assert.Equal(t, uint64(100_000), binary.LittleEndian.Uint64(price[1:]))
}

func TestBuildReadsPoolCache(t *testing.T) {
	ctx := context.Background()
	store := cache.NewPoolCache(t.TempDir(), cache.DefaultTTL, zap.NewNop())
	cached := solana.MustPublicKeyFromBase58("CDuvRTHRaPFEQJYdHsEWpuE3yRB49Azi9e5g8Yi9Xm4d")
	store.WritePair(ctx, cache.MarketNamespace(types.MarketPumpFun), cache.PairKey(types.WSOL.String(), testMint.String()), cached.String())

	var seen dex.BuyParams
	a := NewAssembler(staticResolver{types.MarketPumpFun: recordingCapability(&seen)}, zap.NewNop(), WithPoolCache(store))
	params := BuildParams{
		Market:    types.MarketPumpFun,
		Direction: types.DirectionBuy,
		Wallet:    testWallet,
		Mint:      testMint,
		Amount:    1_000,
	}

	_, err := a.Build(ctx, params)
	require.NoError(t, err)
	require.NotNil(t, seen.PoolAddress)
	assert.Equal(t, cached, *seen.PoolAddress)

	// явный адрес важнее кэша
	explicit := swapProg
	params.PoolAddress = &explicit
	_, err = a.Build(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, swapProg, *seen.PoolAddress)

	// другая площадка: промах
	_, err = NewAssembler(staticResolver{types.MarketPumpSwap: recordingCapability(&seen)}, zap.NewNop(), WithPoolCache(store)).
		Build(ctx, BuildParams{Market: types.MarketPumpSwap, Direction: types.DirectionBuy, Wallet: testWallet, Mint: testMint, Amount: 1_000})
	require.NoError(t, err)
	assert.Nil(t, seen.PoolAddress)
}

func TestBuildValidation(t *testing.T) {
	var seen dex.BuyParams
	resolver := staticResolver{types.MarketPumpFun: recordingCapability(&seen)}

	tests := []struct {
		name   string
		mutate func(p *BuildParams)
		check  func(t *testing.T, err error)
	}{
		{name: "slippage above 1", mutate: func(p *BuildParams) { p.SlippageFraction = 1.5 }, check: validation},
		{name: "negative slippage", mutate: func(p *BuildParams) { p.SlippageFraction = -0.1 }, check: validation},
		{name: "zero amount", mutate: func(p *BuildParams) { p.Amount = 0 }, check: validation},
		{name: "negative priority", mutate: func(p *BuildParams) { p.PriorityFeeSol = -1 }, check: validation},
		{name: "bad direction", mutate: func(p *BuildParams) { p.Direction = "hold" }, check: validation},
		{name: "unknown market", mutate: func(p *BuildParams) { p.Market = types.MarketMoonit }, check: func(t *testing.T, err error) {
			assert.True(t, errors.Is(err, types.ErrUnsupportedMarket))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildParams{
				Market:           types.MarketPumpFun,
				Direction:        types.DirectionBuy,
				Wallet:           testWallet,
				Mint:             testMint,
				Amount:           1,
				SlippageFraction: 0.1,
			}
			tt.mutate(&p)
			_, err := NewAssembler(resolver, zap.NewNop()).Build(context.Background(), p)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func validation(t *testing.T, err error) {
	assert.True(t, types.IsValidationError(err), "got %v", err)
}

func TestCapabilityErrorIsWrapped(t *testing.T) {
	failing := dex.CapabilityFuncs{
		Buy: func(context.Context, dex.BuyParams) ([]solana.Instruction, error) {
			return nil, types.ErrCurveComplete
		},
	}
	a := NewAssembler(staticResolver{types.MarketPumpFun: failing}, zap.NewNop())

	_, err := a.Build(context.Background(), BuildParams{
		Market: types.MarketPumpFun, Direction: types.DirectionBuy,
		Wallet: testWallet, Mint: testMint, Amount: 1,
	})
	assert.ErrorIs(t, err, types.ErrCurveComplete)
}

func TestDevTip(t *testing.T) {
	assert.Equal(t, uint64(15_000), DevTipLamports(10_000_000))
	assert.Equal(t, uint64(1), DevTipLamports(1_000))
	assert.Equal(t, uint64(0), DevTipLamports(666))
	assert.Equal(t, uint64(27_670_116_110_564_327), DevTipLamports(^uint64(0)))

	ix, err := TipInstruction(testWallet, DevTipAddress, 15_000)
	require.NoError(t, err)
	assert.Equal(t, system.ProgramID, ix.ProgramID())
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[:4]))
	assert.Equal(t, uint64(15_000), binary.LittleEndian.Uint64(data[4:]))

	_, err = TipInstruction(testWallet, DevTipAddress, 0)
	assert.Error(t, err)
}

func TestFromBase64RoundTrip(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	sink := solana.NewWallet().PublicKey()
	original := &Unsigned{FeePayer: payer}
	original.Append(ComputeBudgetInstructions(types.PriorityConfig{ComputeUnits: 200_000, PriorityFee: 5})...)
	original.Append(system.NewTransferInstruction(777, payer, sink).Build())

	tx, err := original.Compile(solana.Hash{1})
	require.NoError(t, err)
	encoded, err := tx.ToBase64()
	require.NoError(t, err)

	decoded, err := FromBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, payer, decoded.FeePayer)
	require.Len(t, decoded.Instructions, 3)

	recompiled, err := decoded.Compile(solana.Hash{1})
	require.NoError(t, err)
	assert.Equal(t, tx.Message.AccountKeys, recompiled.Message.AccountKeys)
	assert.Equal(t, tx.Message.Instructions, recompiled.Message.Instructions)

	_, err = FromBase64("%%%")
	assert.Error(t, err)
}
