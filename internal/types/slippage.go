// internal/types/slippage.go
package types

import (
	"fmt"
	"math"
)

// MaxBps is 100% expressed in basis points.
const MaxBps = 10_000

// NormalizeSlippagePercent переводит проскальзывание в процентах (0..100) в долю (0..1).
// Значения вне диапазона обрезаются, NaN и бесконечность отклоняются.
func NormalizeSlippagePercent(percent float64) (float64, error) {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return 0, &ValidationError{Field: "slippage", Reason: "must be a finite number"}
	}
	clamped := math.Max(0, math.Min(100, percent))
	return clamped / 100, nil
}

// ValidateSlippageFraction rejects fractions outside [0, 1].
func ValidateSlippageFraction(fraction float64) error {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return &ValidationError{Field: "slippage", Reason: fmt.Sprintf("fraction %v outside [0, 1]", fraction)}
	}
	return nil
}

// FractionToBps converts a slippage fraction to basis points.
func FractionToBps(fraction float64) (uint16, error) {
	if err := ValidateSlippageFraction(fraction); err != nil {
		return 0, err
	}
	return uint16(math.Round(fraction * MaxBps)), nil
}

// ValidateSlippageBps rejects values above 10000.
func ValidateSlippageBps(bps uint16) error {
	if bps > MaxBps {
		return &ValidationError{Field: "slippage_bps", Reason: fmt.Sprintf("%d exceeds %d", bps, MaxBps)}
	}
	return nil
}
