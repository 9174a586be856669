package boop

import (
	"context"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-trade-core/internal/dex/amm"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/model"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

var (
	u256LamportsPerSol = uint256.NewInt(types.LamportsPerSOL)
	u256TotalSupply    = uint256.MustFromDecimal(TokenTotalSupply)
)

// Quoter reads boop.fun curves.
type Quoter struct {
	reader model.AccountReader
	logger *zap.Logger
}

// NewQuoter creates a boop.fun native quoter.
func NewQuoter(reader model.AccountReader, logger *zap.Logger) *Quoter {
	return &Quoter{reader: reader, logger: logger.Named("boop")}
}

// FetchBondingCurve loads and decodes the curve of mint.
func (q *Quoter) FetchBondingCurve(ctx context.Context, mint solana.PublicKey) (*BondingCurve, solana.PublicKey, error) {
	addr, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	data, err := q.reader.GetAccountData(ctx, addr)
	if err != nil {
		return nil, addr, fmt.Errorf("failed to get boop bonding curve %s: %w", addr, err)
	}
	curve, err := DecodeBondingCurve(data)
	if err != nil {
		return nil, addr, err
	}
	return curve, addr, nil
}

// Quote implements model.NativeQuoter.
func (q *Quoter) Quote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	curve, addr, err := q.FetchBondingCurve(ctx, req.TokenMint())
	if err != nil {
		return nil, err
	}
	return QuoteFromCurve(curve, addr, req), nil
}

// QuoteFromCurve prices a swap. Buys pay the swap fee on input, sells on output.
func QuoteFromCurve(curve *BondingCurve, addr solana.PublicKey, req model.QuoteRequest) *model.Quote {
	feeBps := uint64(curve.SwapFeeBasisPoints)
	solSide := amm.U64(curve.VirtualSolReserves)
	solSide.Add(solSide, amm.U64(curve.SolReserves))
	tokenSide := amm.U64(curve.TokenReserves)

	var (
		out, fee uint64
		spot     float64
	)
	if req.IsBuy() {
		var afterFee uint64
		fee, afterFee = amm.FeeOnInput(req.Amount, feeBps)
		out = buyOut(curve, afterFee)
		spot = amm.ScaledRatio256(tokenSide, solSide)
	} else {
		fee, out = amm.FeeOnOutput(sellOut(curve, req.Amount), feeBps)
		spot = amm.ScaledRatio256(solSide, tokenSide)
	}

	return model.NewQuote(types.MarketBoopFun, req, out, spot,
		model.Fees{TradeFee: fee, TotalFee: fee},
		model.PoolInfo{
			Address:       addr,
			BaseReserve:   curve.TokenReserves,
			QuoteReserve:  amm.ToUint64(solSide),
			BaseDecimals:  9,
			QuoteDecimals: 9,
		})
}

func scalingFactor(curve *BondingCurve) *uint256.Int {
	sf := uint256.NewInt(uint64(DampingScalingFactor))
	sf.Mul(sf, amm.U64(curve.VirtualTokenReserves))
	return sf.Mul(sf, u256LamportsPerSol)
}

// reciprocalDiff returns sf/x - sf/(x+delta), floored at each division.
func reciprocalDiff(sf, x *uint256.Int, delta uint64) uint64 {
	if x.IsZero() {
		return 0
	}
	before := new(uint256.Int).Div(sf, x)
	after := new(uint256.Int).Div(sf, new(uint256.Int).Add(x, amm.U64(delta)))
	if after.Gt(before) {
		return 0
	}
	return amm.ToUint64(before.Sub(before, after))
}

func buyOut(curve *BondingCurve, afterFee uint64) uint64 {
	x := amm.U64(curve.VirtualSolReserves)
	x.Add(x, amm.U64(curve.SolReserves))

	if curve.DampingTerm == DampingScalingFactor {
		return reciprocalDiff(scalingFactor(curve), x, afterFee)
	}

	// Вариант 31: y = vSol * supply / (x + in)
	invariant := new(uint256.Int).Mul(amm.U64(curve.VirtualSolReserves), u256TotalSupply)
	newY := invariant.Div(invariant, x.Add(x, amm.U64(afterFee)))
	y := amm.U64(curve.TokenReserves)
	if newY.Gt(y) {
		return 0
	}
	return amm.ToUint64(y.Sub(y, newY))
}

func sellOut(curve *BondingCurve, tokensIn uint64) uint64 {
	if curve.DampingTerm == DampingScalingFactor {
		issued := new(uint256.Int).Sub(u256TotalSupply, amm.U64(curve.TokenReserves))
		vToken := amm.U64(curve.VirtualTokenReserves)
		if !vToken.Gt(issued) {
			return 0
		}
		return reciprocalDiff(scalingFactor(curve), vToken.Sub(vToken, issued), tokensIn)
	}

	currentX := amm.U64(curve.VirtualSolReserves)
	currentX.Add(currentX, amm.U64(curve.SolReserves))
	newX := new(uint256.Int).Mul(amm.U64(curve.VirtualSolReserves), u256TotalSupply)
	newX.Div(newX, new(uint256.Int).Add(amm.U64(curve.TokenReserves), amm.U64(tokensIn)))
	if newX.Gt(currentX) {
		return 0
	}
	return amm.ToUint64(currentX.Sub(currentX, newX))
}

// Price implements model.PriceSource. The curve and mint decimals are read
// in parallel.
func (q *Quoter) Price(ctx context.Context, mint solana.PublicKey) (*model.PriceResult, error) {
	var (
		curve    *BondingCurve
		decimals uint8
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, _, err := q.FetchBondingCurve(gctx, mint)
		curve = c
		return err
	})
	g.Go(func() error {
		decimals = model.ReadMintDecimals(gctx, q.reader, mint)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return PriceFromCurve(curve, decimals), nil
}

// PriceFromCurve returns lamports per whole token and graduation progress.
func PriceFromCurve(curve *BondingCurve, decimals uint8) *model.PriceResult {
	x := float64(curve.VirtualSolReserves) + float64(curve.SolReserves)
	perToken := x * math.Pow10(int(decimals)) / float64(curve.TokenReserves)

	res := &model.PriceResult{LamportsPerToken: amm.RoundLamports(perToken)}
	if curve.GraduationTarget > 0 {
		percent := amm.CompletionPercent(float64(curve.SolReserves), float64(curve.GraduationTarget))
		res.BondingCurvePercent = &percent
	}
	return res
}
