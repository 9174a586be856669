// ====================================
// File: cmd/trader/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/blockchain/solbc"
	txmon "github.com/rovshanmuradov/solana-trade-core/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-trade-core/internal/cache"
	"github.com/rovshanmuradov/solana-trade-core/internal/config"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/pumpfun"
	"github.com/rovshanmuradov/solana-trade-core/internal/dex/pumpswap"
	"github.com/rovshanmuradov/solana-trade-core/internal/quote"
	"github.com/rovshanmuradov/solana-trade-core/internal/sender"
	"github.com/rovshanmuradov/solana-trade-core/internal/trader"
	"github.com/rovshanmuradov/solana-trade-core/internal/transaction"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
	"github.com/rovshanmuradov/solana-trade-core/internal/utils/logger"
	"github.com/rovshanmuradov/solana-trade-core/internal/utils/metrics"
	"github.com/rovshanmuradov/solana-trade-core/internal/wallet"
)

const usage = `usage: trader [-config path] <command> [flags]

commands:
  price  -market M -mint A[,B...] [-unit SOL|LAMPORTS]
  quote  -market M -mint A -direction buy|sell -amount N [-slippage pct] [-pool P] [-wait-pool]
  buy    -market PUMP_FUN -mint A -amount LAMPORTS [trade flags]
  sell   -market PUMP_FUN -mint A -amount UNITS [trade flags]
  status -signature SIG
  send   -tx BASE64 [-tip sol] [-provider P] [-region R] [-antimev] [-skip-simulation] [-skip-confirmation]
`

// app собирает все компоненты из конфигурации.
type app struct {
	cfg     *config.Config
	pools   *pumpswap.Quoter
	engine  *quote.Engine
	prices  *quote.PriceResolver
	senders *sender.Set
	monitor *txmon.Monitor
	trader  *trader.Trader
}

func newApp(cfg *config.Config, log *logger.Logger, signer wallet.Signer) (*app, error) {
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	client := solbc.NewClient(cfg.RPCURL, log.Logger, solbc.WithMetrics(collector))

	store, err := cache.New(cfg, log.Logger)
	if err != nil {
		return nil, err
	}

	venues := quote.NewNativeVenues(client, log.Logger)
	opts := []quote.Option{quote.WithPoolCache(store), quote.WithMetrics(collector)}
	if cfg.FallbackQuoteURL != "" {
		opts = append(opts, quote.WithFallback(quote.NewHTTPFallback(cfg.FallbackQuoteURL, log.Logger)))
	}

	monitor := txmon.NewMonitor(client, log.Logger, txmon.Config{
		Timeout:      cfg.ConfirmTimeout(),
		PollInterval: cfg.ConfirmPollInterval(),
	}, collector)
	router := sender.NewRouter(cfg, log.Logger)
	senders := sender.NewSet(cfg, router, sender.Deps{RPC: client, Monitor: monitor, Metrics: collector}, log.Logger)

	a := &app{
		cfg:     cfg,
		pools:   pumpswap.NewQuoter(client, log.Logger),
		engine:  quote.NewEngine(venues.Quoters, log.Logger, opts...),
		prices:  quote.NewPriceResolver(venues.Prices, log.Logger),
		senders: senders,
		monitor: monitor,
	}
	if signer == nil {
		return a, nil
	}

	registry, err := dex.NewRegistry(map[types.Market]dex.MarketCapability{
		types.MarketPumpFun: pumpfun.NewCapability(pumpfun.NewQuoter(client, log.Logger)),
	}, log.Logger)
	if err != nil {
		return nil, err
	}
	a.trader = trader.New(cfg, signer, trader.Components{
		Assembler: transaction.NewAssembler(registry, log.Logger, transaction.WithPoolCache(store)),
		Senders:   senders,
		Quotes:    a.engine,
		Prices:    a.prices,
	}, log.Logger)
	return a, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("trader", flag.ContinueOnError)
	configPath := global.String("config", "", "optional config file (json/yaml)")
	envFile := global.String("env", ".env", "dotenv file to load")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		return 1
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var signer wallet.Signer
	if key := os.Getenv("PRIVATE_KEY"); key != "" {
		w, err := wallet.NewWallet(key)
		if err != nil {
			log.Error("Invalid PRIVATE_KEY", zap.Error(err))
			return 1
		}
		signer = w
	}

	a, err := newApp(cfg, log, signer)
	if err != nil {
		log.Error("Failed to initialize", zap.Error(err))
		return 1
	}

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case "price":
		err = a.price(ctx, rest)
	case "quote":
		err = a.quote(ctx, rest)
	case "buy":
		err = a.trade(ctx, types.DirectionBuy, rest)
	case "sell":
		err = a.trade(ctx, types.DirectionSell, rest)
	case "status":
		err = a.status(ctx, rest)
	case "send":
		err = a.send(ctx, signer, rest)
	default:
		global.Usage()
		return 2
	}
	if err != nil {
		log.WithComponent("cli").Error("Command failed", zap.String("command", command), zap.Error(err))
		return 1
	}
	return 0
}

func printJSON(v interface{}) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func parseMints(list string) ([]solana.PublicKey, error) {
	var mints []solana.PublicKey
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, err := solana.PublicKeyFromBase58(part)
		if err != nil {
			return nil, &types.ValidationError{Field: "mint", Reason: fmt.Sprintf("%q: %v", part, err)}
		}
		mints = append(mints, key)
	}
	if len(mints) == 0 {
		return nil, &types.ValidationError{Field: "mint", Reason: "is required"}
	}
	return mints, nil
}

func (a *app) price(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("price", flag.ContinueOnError)
	marketFlag := fs.String("market", "", "market, e.g. PUMP_FUN")
	mintFlag := fs.String("mint", "", "token mint(s), comma separated")
	unitFlag := fs.String("unit", "SOL", "SOL or LAMPORTS")
	if err := fs.Parse(args); err != nil {
		return err
	}

	market, err := types.ParseMarket(*marketFlag)
	if err != nil {
		return err
	}
	if !a.prices.Supports(market) {
		return fmt.Errorf("price for %s: %w", market, types.ErrUnsupportedMarket)
	}
	unit, err := quote.ParseUnit(*unitFlag)
	if err != nil {
		return err
	}
	mints, err := parseMints(*mintFlag)
	if err != nil {
		return err
	}

	reqs := make([]quote.PriceRequest, len(mints))
	for i, m := range mints {
		reqs[i] = quote.PriceRequest{Market: market, Mint: m}
	}

	type row struct {
		Mint  string       `json:"mint"`
		Price *quote.Price `json:"price,omitempty"`
		Error string       `json:"error,omitempty"`
	}
	rows := make([]row, 0, len(reqs))
	for _, outcome := range a.prices.GetPrices(ctx, reqs, unit) {
		r := row{Mint: outcome.Request.Mint.String(), Price: outcome.Price}
		if outcome.Err != nil {
			r.Error = outcome.Err.Error()
		}
		rows = append(rows, r)
	}
	return printJSON(rows)
}

func (a *app) quote(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	marketFlag := fs.String("market", "", "market, e.g. PUMP_SWAP")
	mintFlag := fs.String("mint", "", "token mint")
	directionFlag := fs.String("direction", "buy", "buy or sell")
	amount := fs.Uint64("amount", 0, "lamports for buy, token base units for sell")
	slippage := fs.Float64("slippage", 1, "slippage in percent")
	poolFlag := fs.String("pool", "", "pool address (required for RAYDIUM_CPMM)")
	waitPool := fs.Bool("wait-pool", false, "PUMP_SWAP: wait for a freshly created pool")
	if err := fs.Parse(args); err != nil {
		return err
	}

	market, err := types.ParseMarket(*marketFlag)
	if err != nil {
		return err
	}
	direction, err := types.ParseDirection(*directionFlag)
	if err != nil {
		return err
	}
	mints, err := parseMints(*mintFlag)
	if err != nil {
		return err
	}
	var pool *solana.PublicKey
	if *poolFlag != "" {
		key, err := solana.PublicKeyFromBase58(*poolFlag)
		if err != nil {
			return &types.ValidationError{Field: "pool", Reason: err.Error()}
		}
		pool = &key
	}

	if *waitPool && market == types.MarketPumpSwap {
		ready, err := a.pools.WaitForPool(ctx, mints[0], a.cfg.PumpSwapPoolReadyTimeout())
		if err != nil {
			return err
		}
		pool = &ready.Address
	}

	fraction, err := types.NormalizeSlippagePercent(*slippage)
	if err != nil {
		return err
	}
	bps, err := types.FractionToBps(fraction)
	if err != nil {
		return err
	}

	q, err := a.engine.QuoteSwap(ctx, market, mints[0], direction, *amount, bps, pool)
	if err != nil {
		return err
	}
	return printJSON(q)
}

func (a *app) trade(ctx context.Context, direction types.Direction, args []string) error {
	fs := flag.NewFlagSet(string(direction), flag.ContinueOnError)
	marketFlag := fs.String("market", string(types.MarketPumpFun), "market")
	mintFlag := fs.String("mint", "", "token mint")
	amount := fs.Uint64("amount", 0, "lamports for buy, token base units for sell")
	slippage := fs.Float64("slippage", 1, "slippage in percent")
	priority := fs.Float64("priority-fee", types.DefaultPriorityFeeSOL, "priority fee in SOL")
	tip := fs.Float64("tip", 0, "relay tip in SOL")
	providerFlag := fs.String("provider", "", "JITO, NOZOMI, ASTRALANE or STANDARD")
	region := fs.String("region", "", "relay region code")
	antiMEV := fs.Bool("antimev", false, "request anti-MEV routing")
	buildOnly := fs.Bool("build-only", false, "print the unsigned transaction instead of sending")
	skipSimulation := fs.Bool("skip-simulation", false, "do not simulate before sending")
	skipConfirmation := fs.Bool("skip-confirmation", false, "do not wait for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.trader == nil {
		return errors.New("PRIVATE_KEY is not set")
	}

	market, err := types.ParseMarket(*marketFlag)
	if err != nil {
		return err
	}
	mints, err := parseMints(*mintFlag)
	if err != nil {
		return err
	}
	explicit, err := sender.ParseProvider(*providerFlag)
	if err != nil {
		return err
	}

	params := trader.TradeParams{
		Market:           market,
		Mint:             mints[0],
		Amount:           *amount,
		SlippagePercent:  *slippage,
		PriorityFeeSol:   *priority,
		TipSol:           *tip,
		Provider:         explicit,
		Region:           *region,
		AntiMEV:          *antiMEV,
		SkipSimulation:   *skipSimulation,
		SkipConfirmation: *skipConfirmation,
		BuildOnly:        *buildOnly,
	}
	var res *trader.TradeResult
	if direction == types.DirectionBuy {
		res, err = a.trader.Buy(ctx, params)
	} else {
		res, err = a.trader.Sell(ctx, params)
	}
	if err != nil {
		return err
	}

	out := map[string]string{"provider": string(res.Provider)}
	if res.Sent == nil {
		tx, err := res.Transaction.Compile(solana.Hash{})
		if err != nil {
			return err
		}
		encoded, err := tx.ToBase64()
		if err != nil {
			return err
		}
		out["transaction"] = encoded
		return printJSON(out)
	}
	out["signature"] = res.Sent.Signature.String()
	out["region"] = res.Sent.Region
	out["outcome"] = string(res.Sent.Outcome)
	if res.Sent.ConfirmErr != nil {
		out["confirm_error"] = res.Sent.ConfirmErr.Error()
	}
	return printJSON(out)
}

func (a *app) status(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	sigFlag := fs.String("signature", "", "transaction signature")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sig, err := solana.SignatureFromBase58(strings.TrimSpace(*sigFlag))
	if err != nil {
		return &types.ValidationError{Field: "signature", Reason: err.Error()}
	}
	st, err := a.monitor.GetTransactionStatus(ctx, sig)
	if err != nil {
		return err
	}
	return printJSON(st)
}

func (a *app) send(ctx context.Context, signer wallet.Signer, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	txFlag := fs.String("tx", "", "base64 encoded transaction")
	tip := fs.Float64("tip", 0, "relay tip in SOL")
	providerFlag := fs.String("provider", "", "JITO, NOZOMI, ASTRALANE or STANDARD")
	region := fs.String("region", "", "relay region code")
	antiMEV := fs.Bool("antimev", false, "request anti-MEV routing")
	skipSimulation := fs.Bool("skip-simulation", false, "do not simulate before sending")
	skipConfirmation := fs.Bool("skip-confirmation", false, "do not wait for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if signer == nil {
		return errors.New("PRIVATE_KEY is not set")
	}

	unsigned, err := transaction.FromBase64(*txFlag)
	if err != nil {
		return err
	}
	explicit, err := sender.ParseProvider(*providerFlag)
	if err != nil {
		return err
	}

	router := a.senders.Router()
	provider := router.Choose(explicit, *tip)
	if provider != sender.ProviderStandard && *tip > 0 {
		ix, err := router.TipInstruction(provider, signer.Address(), *tip)
		if err != nil {
			return err
		}
		unsigned.Append(ix)
	}

	s, err := a.senders.Get(provider)
	if err != nil {
		return err
	}
	result, err := s.Send(ctx, unsigned, signer, sender.SendOptions{
		SkipSimulation:   *skipSimulation,
		SkipConfirmation: *skipConfirmation,
		Region:           *region,
		AntiMEV:          *antiMEV,
	})
	if err != nil {
		return err
	}

	out := map[string]string{
		"signature": result.Signature.String(),
		"provider":  string(result.Provider),
		"region":    result.Region,
		"outcome":   string(result.Outcome),
	}
	if result.ConfirmErr != nil {
		out["confirm_error"] = result.ConfirmErr.Error()
	}
	return printJSON(out)
}
