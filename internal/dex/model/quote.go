// internal/dex/model/quote.go
package model

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// QuoteSource tells which path produced a quote.
type QuoteSource string

const (
	SourceNative   QuoteSource = "native"
	SourceFallback QuoteSource = "fallback"
)

// QuoteRequest описывает запрос котировки.
type QuoteRequest struct {
	Market      types.Market
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	Amount      uint64 // в минимальных единицах входного токена
	SlippageBps uint16
	PoolAddress *solana.PublicKey // обязателен для RAYDIUM_CPMM
}

// IsBuy reports whether the native mint is spent.
func (r QuoteRequest) IsBuy() bool {
	return r.InputMint.Equals(types.WSOL)
}

// TokenMint returns the non-native side of the pair.
func (r QuoteRequest) TokenMint() solana.PublicKey {
	if r.IsBuy() {
		return r.OutputMint
	}
	return r.InputMint
}

// Fees разбивка комиссий в единицах того токена, с которого она взята.
type Fees struct {
	TradeFee    uint64
	ProtocolFee uint64
	TotalFee    uint64
	// Mint is set when the source names the fee token (fallback routes).
	Mint solana.PublicKey
}

// PoolInfo describes the account a quote was computed from.
type PoolInfo struct {
	Address       solana.PublicKey
	BaseReserve   uint64
	QuoteReserve  uint64
	BaseDecimals  uint8
	QuoteDecimals uint8
}

// Quote результат расчёта свапа.
type Quote struct {
	Market         types.Market
	InAmount       uint64
	OutAmount      uint64
	MinOutAmount   uint64 // floor(out * (10000 - bps) / 10000)
	SlippageBps    uint16
	SpotPrice      float64 // output per input at current reserves
	ExecutionPrice float64 // OutAmount / InAmount
	PriceImpactPct string  // |exec - spot| / spot * 100, 4 decimals
	Fees           Fees
	Pool           PoolInfo
	Source         QuoteSource
}

// PriceResult is the spot price of a token in lamports.
type PriceResult struct {
	LamportsPerToken    uint64
	BondingCurvePercent *float64 // nil when the venue has no curve
}
