package solbc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/blockchain"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// AnchorError represents an error from Anchor framework
type AnchorError struct {
	Code int
	Name string
	Msg  string
}

func (a AnchorError) String() string {
	return fmt.Sprintf("AnchorError %s (%d): %s", a.Name, a.Code, a.Msg)
}

// ErrorAnalyzer turns simulation output into typed failures.
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// SimulationFailure returns nil for a successful simulation.
func (ea *ErrorAnalyzer) SimulationFailure(result *blockchain.SimulationResult) *types.SimulationFailure {
	if !result.Failed() {
		return nil
	}
	return &types.SimulationFailure{
		Err:     result.Err,
		Logs:    result.Logs,
		Summary: ea.Summarize(result.Logs),
	}
}

// AnalyzeRPCError extracts a SimulationFailure from a preflight rejection of
// sendTransaction. Other errors return nil.
func (ea *ErrorAnalyzer) AnalyzeRPCError(err error) *types.SimulationFailure {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return nil
	}
	if !strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		return nil
	}

	failure := &types.SimulationFailure{Err: rpcErr.Message}
	if dataMap, ok := rpcErr.Data.(map[string]interface{}); ok {
		if logs, ok := dataMap["logs"].([]interface{}); ok {
			for _, entry := range logs {
				if s, ok := entry.(string); ok {
					failure.Logs = append(failure.Logs, s)
				}
			}
		}
		if instrErr, ok := dataMap["err"]; ok && instrErr != nil {
			failure.Err = instrErr
		}
	}
	failure.Summary = ea.Summarize(failure.Logs)
	return failure
}

// Summarize returns a one-line description of the program failure found in
// logs, or "" when nothing recognisable is there.
func (ea *ErrorAnalyzer) Summarize(logs []string) string {
	for _, line := range logs {
		if strings.Contains(line, "AnchorError") {
			anchorErr := parseAnchorErrorLog(line)
			ea.logger.Warn("Anchor error detected",
				zap.Int("code", anchorErr.Code),
				zap.String("name", anchorErr.Name),
				zap.String("message", anchorErr.Msg))
			return anchorErr.String()
		}
	}
	for _, line := range logs {
		if idx := strings.Index(line, "custom program error: "); idx >= 0 {
			hexCode := strings.TrimSpace(line[idx+len("custom program error: "):])
			if code, err := strconv.ParseUint(strings.TrimPrefix(hexCode, "0x"), 16, 32); err == nil {
				return fmt.Sprintf("custom program error %s (%d)", hexCode, code)
			}
			return "custom program error " + hexCode
		}
	}
	return ""
}

// parseAnchorErrorLog parses an Anchor error log string
// Example: "Program log: AnchorError occurred. Error Code: InstructionFallbackNotFound. Error Number: 101. Error Message: Fallback functions are not supported."
func parseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}

	if _, rest, ok := strings.Cut(logStr, "Error Number:"); ok {
		num, _, _ := strings.Cut(rest, ".")
		result.Code, _ = strconv.Atoi(strings.TrimSpace(num))
	}

	if _, rest, ok := strings.Cut(logStr, "Error Code:"); ok {
		name, _, _ := strings.Cut(rest, ".")
		result.Name = strings.TrimSpace(name)
	}

	if _, rest, ok := strings.Cut(logStr, "Error Message:"); ok {
		result.Msg = strings.TrimSuffix(strings.TrimSpace(rest), ".")
	}

	return result
}
