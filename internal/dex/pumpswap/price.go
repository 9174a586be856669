package pumpswap

import (
	"context"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/amm"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
)

// Price implements model.PriceSource: lamports received for selling one
// whole token into the pool, after fees.
func (q *Quoter) Price(ctx context.Context, mint solana.PublicKey) (*model.PriceResult, error) {
	pool, _, err := q.FetchPool(ctx, mint)
	if err != nil {
		return nil, err
	}
	decimals := model.ReadMintDecimals(ctx, q.reader, mint)
	return PriceFromPool(pool, decimals), nil
}

// PriceFromPool returns the sell value of 10^decimals base units.
func PriceFromPool(pool *PoolState, decimals uint8) *model.PriceResult {
	oneToken := uint64(math.Pow10(int(decimals)))
	gross := amm.ConstantProductOut(pool.BaseReserve, pool.QuoteReserve, oneToken)
	_, net := amm.FeeOnOutput(gross, pool.TradeFeeBps+pool.ProtocolFeeBps)
	return &model.PriceResult{LamportsPerToken: net}
}
