// internal/dex/model/source.go
package model

import (
	"bytes"
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/amm"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// AccountReader fetches raw account bytes. A missing account is reported as
// *types.NotFoundError.
type AccountReader interface {
	GetAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
}

// NativeQuoter computes a quote from on-chain state without vendor code.
type NativeQuoter interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

// PriceSource reads the spot price of a token on one venue.
type PriceSource interface {
	Price(ctx context.Context, mint solana.PublicKey) (*PriceResult, error)
}

const (
	// DefaultMintDecimals используется, если mint-аккаунт не удалось прочитать.
	DefaultMintDecimals = 9
	mintDecimalsOffset  = 44
)

// ReadMintDecimals reads the decimals byte of an SPL mint account.
// Any failure falls back to DefaultMintDecimals.
func ReadMintDecimals(ctx context.Context, reader AccountReader, mint solana.PublicKey) uint8 {
	data, err := reader.GetAccountData(ctx, mint)
	if err != nil || len(data) <= mintDecimalsOffset {
		return DefaultMintDecimals
	}
	return data[mintDecimalsOffset]
}

// CheckDiscriminator returns a DecodeError when data does not start with want
// or is shorter than minLen.
func CheckDiscriminator(venue types.Market, data []byte, want []byte, minLen int) error {
	if len(data) < minLen {
		return &types.DecodeError{Venue: venue.String(), Reason: "account data too short"}
	}
	if len(data) < len(want) || !bytes.Equal(data[:len(want)], want) {
		return &types.DecodeError{Venue: venue.String(), Reason: "discriminator mismatch"}
	}
	return nil
}

// NewQuote fills the derived fields shared by every native quoter.
func NewQuote(market types.Market, req QuoteRequest, out uint64, spot float64, fees Fees, pool PoolInfo) *Quote {
	exec := amm.ScaledRatio(out, req.Amount)
	return &Quote{
		Market:         market,
		InAmount:       req.Amount,
		OutAmount:      out,
		MinOutAmount:   amm.MinimumOutput(out, req.SlippageBps),
		SlippageBps:    req.SlippageBps,
		SpotPrice:      spot,
		ExecutionPrice: exec,
		PriceImpactPct: amm.FormatPct(amm.PriceImpactPct(spot, exec)),
		Fees:           fees,
		Pool:           pool,
		Source:         SourceNative,
	}
}
