package types

import (
	"fmt"
	"math"
)

const (
	// BaseComputeUnits is the compute unit limit set on every swap transaction.
	BaseComputeUnits uint32 = 1_000_000
	// LamportsToMicroLamports scales a per-unit lamport price to micro-lamports.
	LamportsToMicroLamports = 1_000_000
)

// PriorityConfig describes the compute budget of a transaction.
type PriorityConfig struct {
	ComputeUnits uint32 // Number of compute units
	PriorityFee  uint64 // Priority fee in micro-lamports per unit
}

// NewPriorityConfig spreads a total priority fee in SOL over BaseComputeUnits.
// The price is round(priorityFeeSol * 1e9 / units * 1e6) micro-lamports.
func NewPriorityConfig(priorityFeeSol float64) (PriorityConfig, error) {
	if math.IsNaN(priorityFeeSol) || math.IsInf(priorityFeeSol, 0) || priorityFeeSol < 0 {
		return PriorityConfig{}, &ValidationError{
			Field:  "priority_fee",
			Reason: fmt.Sprintf("%v is not a non-negative number", priorityFeeSol),
		}
	}
	return PriorityConfig{
		ComputeUnits: BaseComputeUnits,
		PriorityFee:  ComputeUnitPrice(priorityFeeSol, BaseComputeUnits),
	}, nil
}

// ComputeUnitPrice returns the micro-lamport price per compute unit.
func ComputeUnitPrice(priorityFeeSol float64, units uint32) uint64 {
	if units == 0 || priorityFeeSol <= 0 {
		return 0
	}
	lamports := priorityFeeSol * LamportsPerSOL
	return uint64(math.Round(lamports / float64(units) * LamportsToMicroLamports))
}
