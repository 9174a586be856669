// Package amm holds the integer curve math shared by the native quoters.
// All divisions floor, matching on-chain integer arithmetic.
package amm

import (
	"math"
	"math/big"
	"strconv"

	"github.com/holiman/uint256"
)

// BpsDenominator is 100% in basis points.
const BpsDenominator = 10_000

var u256BpsDenom = uint256.NewInt(BpsDenominator)

// U64 wraps a uint64 as a 256-bit integer.
func U64(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// U128 builds a 256-bit integer from little-endian 64-bit halves.
func U128(lo, hi uint64) *uint256.Int {
	return &uint256.Int{lo, hi, 0, 0}
}

// ToUint64 saturates at math.MaxUint64.
func ToUint64(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

// FeeOnInput takes bps from the input amount.
func FeeOnInput(amount uint64, feeBps uint64) (fee, afterFee uint64) {
	f := new(uint256.Int).Mul(U64(amount), U64(feeBps))
	f.Div(f, u256BpsDenom)
	fee = ToUint64(f)
	if fee > amount {
		fee = amount
	}
	return fee, amount - fee
}

// FeeOnOutput takes bps from a computed output amount.
func FeeOnOutput(amount uint64, feeBps uint64) (fee, afterFee uint64) {
	return FeeOnInput(amount, feeBps)
}

// ConstantProductOut returns outReserve * in / (inReserve + in).
func ConstantProductOut(inReserve, outReserve, amountIn uint64) uint64 {
	den := new(uint256.Int).Add(U64(inReserve), U64(amountIn))
	if den.IsZero() {
		return 0
	}
	num := new(uint256.Int).Mul(U64(outReserve), U64(amountIn))
	return ToUint64(num.Div(num, den))
}

// VirtualReservesOut moves amountIn into the input side of k = in*out and
// returns how much the output side shrinks: out - k/(in+amountIn).
func VirtualReservesOut(inReserve, outReserve, amountIn uint64) uint64 {
	k := new(uint256.Int).Mul(U64(inReserve), U64(outReserve))
	newIn := new(uint256.Int).Add(U64(inReserve), U64(amountIn))
	if newIn.IsZero() {
		return 0
	}
	newOut := k.Div(k, newIn)
	out := U64(outReserve)
	if newOut.Gt(out) {
		return 0
	}
	return ToUint64(out.Sub(out, newOut))
}

// SplitFee distributes fee across rates pro rata; zero total returns zeros.
func SplitFee(fee uint64, rates ...uint64) []uint64 {
	parts := make([]uint64, len(rates))
	total := new(uint256.Int)
	for _, r := range rates {
		total.Add(total, U64(r))
	}
	if total.IsZero() {
		return parts
	}
	for i, r := range rates {
		p := new(uint256.Int).Mul(U64(fee), U64(r))
		parts[i] = ToUint64(p.Div(p, total))
	}
	return parts
}

// MinimumOutput is floor(out * (10000 - bps) / 10000); bps above 10000 yield zero.
func MinimumOutput(out uint64, slippageBps uint16) uint64 {
	if slippageBps >= BpsDenominator {
		return 0
	}
	v := new(uint256.Int).Mul(U64(out), U64(uint64(BpsDenominator-slippageBps)))
	return ToUint64(v.Div(v, u256BpsDenom))
}

// MaximumInput is amount + floor(amount * bps / 10000), saturating at math.MaxUint64.
func MaximumInput(amount uint64, slippageBps uint16) uint64 {
	v := new(uint256.Int).Mul(U64(amount), U64(uint64(slippageBps)))
	v.Div(v, u256BpsDenom)
	return ToUint64(v.Add(v, U64(amount)))
}

// ScaledRatio returns floor(num * 1e9 / den) / 1e9.
func ScaledRatio(num, den uint64) float64 {
	return ScaledRatio256(U64(num), U64(den))
}

// ScaledRatio256 is ScaledRatio over wide integers.
func ScaledRatio256(num, den *uint256.Int) float64 {
	if den.IsZero() {
		return 0
	}
	v := new(uint256.Int).Mul(num, uint256.NewInt(1_000_000_000))
	v.Div(v, den)
	if v.IsUint64() {
		return float64(v.Uint64()) / 1e9
	}
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f / 1e9
}

// PriceImpactPct is |exec - spot| / spot * 100; zero spot yields zero.
func PriceImpactPct(spot, exec float64) float64 {
	if spot == 0 {
		return 0
	}
	return math.Abs((exec - spot) / spot * 100)
}

// FormatPct renders a percentage with four decimals.
func FormatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// RoundPercent rounds to two decimals.
func RoundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundLamports rounds up only when the fractional part exceeds one half.
func RoundLamports(v float64) uint64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	f := math.Floor(v)
	if v-f > 0.5 {
		f++
	}
	return uint64(f)
}

// CompletionPercent is min(1, moved/target) * 100 clamped to [0, 100] and
// rounded to two decimals. A zero target yields zero.
func CompletionPercent(moved, target float64) float64 {
	if target <= 0 {
		return 0
	}
	ratio := math.Max(0, math.Min(1, moved/target))
	return RoundPercent(ratio * 100)
}
