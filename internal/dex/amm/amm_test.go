package amm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVirtualReservesOutMatchesFloatReference(t *testing.T) {
	// Виртуальные резервы свежей кривой: 30 SOL / 1.073e15 токенов.
	x := uint64(30_000_000_000)
	y := uint64(1_073_000_000_000_000)
	in := uint64(1_000_000_000)

	fee, afterFee := FeeOnInput(in, 100)
	assert.Equal(t, uint64(10_000_000), fee)

	out := VirtualReservesOut(x, y, afterFee)

	a := float64(afterFee)
	reference := float64(y) * a / (float64(x) + a)

	assert.InDelta(t, reference, float64(out), 2, "integer and float curves diverge")
	assert.Less(t, out, y)
	assert.Greater(t, out, uint64(0))
}

func TestConstantProductOut(t *testing.T) {
	tests := []struct {
		name              string
		inRes, outRes, in uint64
		want              uint64
	}{
		{name: "simple", inRes: 1_000, outRes: 1_000, in: 1_000, want: 500},
		{name: "zero input", inRes: 1_000, outRes: 1_000, in: 0, want: 0},
		{name: "empty pool", inRes: 0, outRes: 0, in: 0, want: 0},
		{name: "floors", inRes: 3, outRes: 10, in: 1, want: 2},
		{name: "large", inRes: math.MaxUint64 / 2, outRes: math.MaxUint64 / 2, in: math.MaxUint64 / 2, want: math.MaxUint64 / 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConstantProductOut(tt.inRes, tt.outRes, tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeeOnInput(t *testing.T) {
	fee, after := FeeOnInput(12_345, 25)
	assert.Equal(t, uint64(30), fee)
	assert.Equal(t, uint64(12_315), after)

	fee, after = FeeOnInput(100, 20_000)
	assert.Equal(t, uint64(100), fee)
	assert.Equal(t, uint64(0), after)
}

func TestSplitFee(t *testing.T) {
	parts := SplitFee(1_000, 20, 5)
	assert.Equal(t, []uint64{800, 200}, parts)

	assert.Equal(t, []uint64{0, 0}, SplitFee(1_000, 0, 0))
}

func TestMinimumOutput(t *testing.T) {
	outs := []uint64{0, 1, 999, 1_000_000, math.MaxUint64}
	slippages := []uint16{0, 1, 50, 100, 5_000, 10_000}

	for _, out := range outs {
		for _, bps := range slippages {
			min := MinimumOutput(out, bps)
			assert.LessOrEqual(t, min, out)
			if bps == 0 {
				assert.Equal(t, out, min)
			}
		}
	}

	assert.Equal(t, uint64(990), MinimumOutput(1_000, 100))
	assert.Equal(t, uint64(989), MinimumOutput(999, 100))
	assert.Equal(t, uint64(0), MinimumOutput(1_000, 10_000))
}

func TestMaximumInput(t *testing.T) {
	assert.Equal(t, uint64(10_100_000), MaximumInput(10_000_000, 100))
	assert.Equal(t, uint64(1_000), MaximumInput(1_000, 0))
	assert.Equal(t, uint64(1), MaximumInput(1, 50))
	// amount*bps переполнил бы uint64
	assert.Equal(t, uint64(9_315_605_757_223_323_565), MaximumInput(math.MaxUint64/2, 100))
	assert.Equal(t, uint64(math.MaxUint64), MaximumInput(math.MaxUint64, 100))
}

func TestScaledRatio(t *testing.T) {
	assert.InDelta(t, 0.5, ScaledRatio(1, 2), 1e-12)
	assert.InDelta(t, 0.333333333, ScaledRatio(1, 3), 1e-12)
	assert.Equal(t, 0.0, ScaledRatio(1, 0))
	assert.InDelta(t, 2.0, ScaledRatio256(U128(0, 2), U128(0, 1)), 1e-12)
}

func TestPriceImpactAndFormatting(t *testing.T) {
	assert.InDelta(t, 10.0, PriceImpactPct(1.0, 0.9), 1e-9)
	assert.Equal(t, 0.0, PriceImpactPct(0, 5))
	assert.Equal(t, "10.0000", FormatPct(10))
	assert.Equal(t, "0.1235", FormatPct(0.123456))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, uint64(2), RoundLamports(2.5))
	assert.Equal(t, uint64(3), RoundLamports(2.51))
	assert.Equal(t, uint64(2), RoundLamports(2.49))
	assert.Equal(t, uint64(0), RoundLamports(-1))
	assert.InDelta(t, 12.35, RoundPercent(12.3456), 1e-12)
}

func TestCompletionPercent(t *testing.T) {
	assert.InDelta(t, 50.0, CompletionPercent(50, 100), 1e-12)
	assert.InDelta(t, 100.0, CompletionPercent(150, 100), 1e-12)
	assert.InDelta(t, 0.0, CompletionPercent(-5, 100), 1e-12)
	assert.Equal(t, 0.0, CompletionPercent(10, 0))
	assert.InDelta(t, 33.33, CompletionPercent(1, 3), 1e-12)
}

func TestToUint64Saturates(t *testing.T) {
	assert.Equal(t, uint64(math.MaxUint64), ToUint64(U128(0, 1)))
	assert.Equal(t, uint64(7), ToUint64(U64(7)))
}
