// internal/types/types.go
package types

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Market identifies a trading venue.
type Market string

const (
	MarketPumpFun          Market = "PUMP_FUN"
	MarketPumpSwap         Market = "PUMP_SWAP"
	MarketRaydiumAMM       Market = "RAYDIUM_AMM"
	MarketRaydiumCLMM      Market = "RAYDIUM_CLMM"
	MarketRaydiumCPMM      Market = "RAYDIUM_CPMM"
	MarketRaydiumLaunchpad Market = "RAYDIUM_LAUNCHPAD"
	MarketMeteoraDLMM      Market = "METEORA_DLMM"
	MarketMeteoraDAMMV1    Market = "METEORA_DAMM_V1"
	MarketMeteoraDAMMV2    Market = "METEORA_DAMM_V2"
	MarketMeteoraDBC       Market = "METEORA_DBC"
	MarketOrcaWhirlpool    Market = "ORCA_WHIRLPOOL"
	MarketMoonit           Market = "MOONIT"
	MarketHeaven           Market = "HEAVEN"
	MarketSugar            Market = "SUGAR"
	MarketBoopFun          Market = "BOOP_FUN"
)

// Markets lists every supported venue in a stable order.
var Markets = []Market{
	MarketPumpFun,
	MarketPumpSwap,
	MarketRaydiumAMM,
	MarketRaydiumCLMM,
	MarketRaydiumCPMM,
	MarketRaydiumLaunchpad,
	MarketMeteoraDLMM,
	MarketMeteoraDAMMV1,
	MarketMeteoraDAMMV2,
	MarketMeteoraDBC,
	MarketOrcaWhirlpool,
	MarketMoonit,
	MarketHeaven,
	MarketSugar,
	MarketBoopFun,
}

// ParseMarket нормализует имя рынка (регистр не важен).
func ParseMarket(s string) (Market, error) {
	key := Market(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range Markets {
		if m == key {
			return m, nil
		}
	}
	return "", &ValidationError{Field: "market", Reason: fmt.Sprintf("unsupported market %q", s)}
}

func (m Market) String() string { return string(m) }

// Direction is the side of a swap relative to the native token.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// ParseDirection accepts "buy" or "sell" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionBuy:
		return DirectionBuy, nil
	case DirectionSell:
		return DirectionSell, nil
	default:
		return "", &ValidationError{Field: "direction", Reason: fmt.Sprintf("unsupported direction %q", s)}
	}
}

const (
	// LamportsPerSOL is the number of lamports in one SOL.
	LamportsPerSOL = 1_000_000_000
	// DefaultPriorityFeeSOL is used when the caller leaves the priority fee unset.
	DefaultPriorityFeeSOL = 0.0001
)

// WSOL is the wrapped native mint used as the quote side of every pair.
var WSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// SOLToLamports converts a SOL amount to lamports, rounding to the nearest lamport.
func SOLToLamports(sol float64) uint64 {
	if sol <= 0 {
		return 0
	}
	return uint64(sol*LamportsPerSOL + 0.5)
}
