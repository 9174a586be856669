// internal/transaction/builder.go
package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/cache"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// Unsigned is an ordered instruction list with a fee payer. The blockhash is
// filled in when the transaction is compiled for sending.
type Unsigned struct {
	FeePayer     solana.PublicKey
	Instructions []solana.Instruction
}

// Append добавляет инструкции в конец.
func (u *Unsigned) Append(ixs ...solana.Instruction) {
	u.Instructions = append(u.Instructions, ixs...)
}

// Compile creates the wire transaction with the given blockhash.
func (u *Unsigned) Compile(blockhash solana.Hash) (*solana.Transaction, error) {
	if u.FeePayer.IsZero() {
		return nil, errors.New("fee payer is not set")
	}
	tx, err := solana.NewTransaction(u.Instructions, blockhash, solana.TransactionPayer(u.FeePayer))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// CapabilityResolver returns the instruction builder of a market.
type CapabilityResolver interface {
	Resolve(market types.Market) (dex.MarketCapability, error)
}

// BuildParams описывает свап, для которого собирается транзакция.
type BuildParams struct {
	Market           types.Market
	Direction        types.Direction
	Wallet           solana.PublicKey
	Mint             solana.PublicKey
	Amount           uint64  // лампорты для покупки, единицы токена для продажи
	SlippageFraction float64 // 0..1
	PriorityFeeSol   float64 // 0 означает DefaultPriorityFeeSOL
	PoolAddress      *solana.PublicKey
	Extra            []solana.Instruction
}

// Assembler builds the compute budget and swap skeleton of a trade.
// Tips are appended by the caller afterwards.
type Assembler struct {
	capabilities CapabilityResolver
	pools        cache.Store
	logger       *zap.Logger
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithPoolCache fills a missing pool address from the resolved-pool cache.
func WithPoolCache(store cache.Store) AssemblerOption {
	return func(a *Assembler) { a.pools = store }
}

// NewAssembler создает сборщик транзакций.
func NewAssembler(capabilities CapabilityResolver, logger *zap.Logger, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		capabilities: capabilities,
		logger:       logger.Named("tx-assembler"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build returns [CU limit, CU price, swap..., extra...].
func (a *Assembler) Build(ctx context.Context, p BuildParams) (*Unsigned, error) {
	if err := types.ValidateSlippageFraction(p.SlippageFraction); err != nil {
		return nil, err
	}
	if p.Amount == 0 {
		return nil, &types.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if p.Wallet.IsZero() {
		return nil, &types.ValidationError{Field: "wallet", Reason: "is required"}
	}
	if p.PriorityFeeSol == 0 {
		p.PriorityFeeSol = types.DefaultPriorityFeeSOL
	}
	priority, err := types.NewPriorityConfig(p.PriorityFeeSol)
	if err != nil {
		return nil, err
	}
	if p.PoolAddress == nil {
		p.PoolAddress = a.cachedPool(ctx, p.Market, p.Mint)
	}

	capability, err := a.capabilities.Resolve(p.Market)
	if err != nil {
		return nil, err
	}

	var swap []solana.Instruction
	switch p.Direction {
	case types.DirectionBuy:
		swap, err = capability.GetBuyInstructions(ctx, dex.BuyParams{
			Mint:              p.Mint,
			Wallet:            p.Wallet,
			InputAmountNative: p.Amount,
			SlippageFraction:  p.SlippageFraction,
			PoolAddress:       p.PoolAddress,
		})
	case types.DirectionSell:
		swap, err = capability.GetSellInstructions(ctx, dex.SellParams{
			Mint:             p.Mint,
			Wallet:           p.Wallet,
			InputAmountToken: p.Amount,
			SlippageFraction: p.SlippageFraction,
			PoolAddress:      p.PoolAddress,
		})
	default:
		return nil, &types.ValidationError{Field: "direction", Reason: fmt.Sprintf("unsupported direction %q", p.Direction)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s instructions: %w", p.Market, p.Direction, err)
	}
	if len(swap) == 0 {
		return nil, fmt.Errorf("%s returned no %s instructions", p.Market, p.Direction)
	}

	tx := &Unsigned{FeePayer: p.Wallet}
	tx.Append(ComputeBudgetInstructions(priority)...)
	tx.Append(swap...)
	tx.Append(p.Extra...)

	a.logger.Debug("Transaction assembled",
		zap.String("market", p.Market.String()),
		zap.String("direction", string(p.Direction)),
		zap.Uint32("compute_units", priority.ComputeUnits),
		zap.Uint64("unit_price", priority.PriorityFee),
		zap.Int("instructions", len(tx.Instructions)))
	return tx, nil
}

// cachedPool returns the pool a previous quote resolved for mint/SOL, or nil.
func (a *Assembler) cachedPool(ctx context.Context, market types.Market, mint solana.PublicKey) *solana.PublicKey {
	if a.pools == nil {
		return nil
	}
	addr, ok := a.pools.ReadPair(ctx, cache.MarketNamespace(market), cache.PairKey(mint.String(), types.WSOL.String()))
	if !ok {
		return nil
	}
	key, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		a.logger.Debug("ignoring malformed cached pool", zap.String("address", addr))
		return nil
	}
	return &key
}
