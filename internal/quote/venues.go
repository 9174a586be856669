// internal/quote/venues.go
package quote

import (
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/boop"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/heaven"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/pumpfun"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/pumpswap"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/raydium"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// NativeVenues wires the venue decoders to one account reader.
type NativeVenues struct {
	Quoters map[types.Market]model.NativeQuoter
	Prices  map[types.Market]model.PriceSource
}

// NewNativeVenues создает нативные котировщики и источники цен.
func NewNativeVenues(reader model.AccountReader, logger *zap.Logger) NativeVenues {
	pf := pumpfun.NewQuoter(reader, logger)
	ps := pumpswap.NewQuoter(reader, logger)
	bp := boop.NewQuoter(reader, logger)

	return NativeVenues{
		Quoters: map[types.Market]model.NativeQuoter{
			types.MarketPumpFun:     pf,
			types.MarketPumpSwap:    ps,
			types.MarketRaydiumCPMM: raydium.NewCPMMQuoter(reader, logger),
			types.MarketBoopFun:     bp,
		},
		Prices: map[types.Market]model.PriceSource{
			types.MarketPumpFun:  pf,
			types.MarketPumpSwap: ps,
			types.MarketBoopFun:  bp,
			types.MarketHeaven:   heaven.NewPriceReader(reader, logger),
		},
	}
}
