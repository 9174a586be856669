// internal/transaction/fee_manager.go
package transaction

import (
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// ComputeBudgetInstructions возвращает лимит и цену compute units, именно в этом порядке.
func ComputeBudgetInstructions(cfg types.PriorityConfig) []solana.Instruction {
	return []solana.Instruction{
		computebudget.NewSetComputeUnitLimitInstruction(cfg.ComputeUnits).Build(),
		computebudget.NewSetComputeUnitPriceInstruction(cfg.PriorityFee).Build(),
	}
}
