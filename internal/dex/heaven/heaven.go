// Package heaven reads Heaven liquidity pool reserves for spot pricing.
package heaven

import (
	"context"
	"fmt"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/amm"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// HeavenProgramID is the Heaven AMM program.
var HeavenProgramID = solana.MustPublicKeyFromBase58("HEAVENoP2qxoeuF8Dj2oT1GHEnu49U5mJYkdeC8BAX2o")

const (
	// reserveOffset: discriminator + LiquidityPoolInfo + market cap based fees.
	reserveOffset = 8 + 88 + 360
	reserveSize   = 64
)

// Reserve is the LiquidityPoolReserve block of a pool state account.
type Reserve struct {
	Header   [reserveOffset]byte
	TokenA   uint64
	TokenB   uint64
	Reserved [32]byte
	InitialA uint64
	InitialB uint64
}

// DerivePoolState returns ["liquidity_pool_state", mint, WSOL].
func DerivePoolState(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("liquidity_pool_state"), mint.Bytes(), types.WSOL.Bytes()},
		HeavenProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive heaven pool state: %w", err)
	}
	return addr, nil
}

// DecodeReserve reads the reserve block. The account carries no checked
// discriminator, only the length is validated.
func DecodeReserve(data []byte) (*Reserve, error) {
	if err := model.CheckDiscriminator(types.MarketHeaven, data, nil, reserveOffset+reserveSize); err != nil {
		return nil, err
	}
	var r Reserve
	if err := bin.NewBinDecoder(data).Decode(&r); err != nil {
		return nil, &types.DecodeError{Venue: types.MarketHeaven.String(), Reason: err.Error()}
	}
	return &r, nil
}

// PriceReader reads Heaven pool prices.
type PriceReader struct {
	reader model.AccountReader
	logger *zap.Logger
}

// NewPriceReader creates a Heaven price source.
func NewPriceReader(reader model.AccountReader, logger *zap.Logger) *PriceReader {
	return &PriceReader{reader: reader, logger: logger.Named("heaven")}
}

// Price implements model.PriceSource.
func (p *PriceReader) Price(ctx context.Context, mint solana.PublicKey) (*model.PriceResult, error) {
	addr, err := DerivePoolState(mint)
	if err != nil {
		return nil, err
	}

	var (
		reserve  *Reserve
		decimals uint8
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := p.reader.GetAccountData(gctx, addr)
		if err != nil {
			return fmt.Errorf("failed to get heaven pool state %s: %w", addr, err)
		}
		reserve, err = DecodeReserve(data)
		return err
	})
	g.Go(func() error {
		decimals = model.ReadMintDecimals(gctx, p.reader, mint)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return PriceFromReserve(reserve, decimals), nil
}

// PriceFromReserve: tokenB lamports per whole tokenA, progress by tokens sold.
func PriceFromReserve(r *Reserve, decimals uint8) *model.PriceResult {
	var perToken uint64
	if r.TokenA > 0 {
		perToken = amm.RoundLamports(float64(r.TokenB) * math.Pow10(int(decimals)) / float64(r.TokenA))
	}

	percent := 0.0
	if r.InitialA > 0 {
		sold := math.Max(0, float64(r.InitialA)-float64(r.TokenA))
		percent = amm.CompletionPercent(sold, float64(r.InitialA))
	}
	return &model.PriceResult{LamportsPerToken: perToken, BondingCurvePercent: &percent}
}
