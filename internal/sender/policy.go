// internal/sender/policy.go
package sender

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// Provider names a submission path.
type Provider string

const (
	ProviderStandard  Provider = "STANDARD"
	ProviderJito      Provider = "JITO"
	ProviderNozomi    Provider = "NOZOMI"
	ProviderAstralane Provider = "ASTRALANE"
)

const (
	// DustTipSOL: ниже этого чаевые не оправдывают релей.
	DustTipSOL = 0.00001
	// HighGradeTipSOL is the tip from which Nozomi is preferred.
	HighGradeTipSOL = 0.001
)

// ParseProvider accepts provider names case-insensitively. Empty input
// returns "" which means "let the router decide".
func ParseProvider(s string) (Provider, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch Provider(name) {
	case "":
		return "", nil
	case ProviderStandard, ProviderJito, ProviderNozomi, ProviderAstralane:
		return Provider(name), nil
	}
	return "", &types.ValidationError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", s)}
}

// TipPolicy is the static per-relay table: minimum tip, tip accounts and
// region endpoints.
type TipPolicy struct {
	Provider    Provider
	MinTipSOL   float64
	TipAccounts []solana.PublicKey
	Regions     map[string]string
}

// MinTipLamports returns the minimum tip in lamports.
func (p TipPolicy) MinTipLamports() uint64 {
	return types.SOLToLamports(p.MinTipSOL)
}

// RegionCodes returns the region codes in stable order.
func (p TipPolicy) RegionCodes() []string {
	codes := make([]string, 0, len(p.Regions))
	for code := range p.Regions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func mustKeys(addrs ...string) []solana.PublicKey {
	keys := make([]solana.PublicKey, len(addrs))
	for i, a := range addrs {
		keys[i] = solana.MustPublicKeyFromBase58(a)
	}
	return keys
}

var policies = map[Provider]TipPolicy{
	ProviderJito: {
		Provider:  ProviderJito,
		MinTipSOL: 0,
		TipAccounts: mustKeys(
			"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
			"HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe",
			"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY",
			"ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49",
			"DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh",
			"ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt",
			"DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL",
			"3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT",
		),
		Regions: map[string]string{
			"MAINNET": "https://mainnet.block-engine.jito.wtf",
			"AMS":     "https://amsterdam.mainnet.block-engine.jito.wtf",
			"DUB":     "https://dublin.mainnet.block-engine.jito.wtf",
			"FRA":     "https://frankfurt.mainnet.block-engine.jito.wtf",
			"LON":     "https://london.mainnet.block-engine.jito.wtf",
			"NY":      "https://ny.mainnet.block-engine.jito.wtf",
			"SLC":     "https://slc.mainnet.block-engine.jito.wtf",
			"SG":      "https://singapore.mainnet.block-engine.jito.wtf",
			"TYO":     "https://tokyo.mainnet.block-engine.jito.wtf",
		},
	},
	ProviderNozomi: {
		Provider:  ProviderNozomi,
		MinTipSOL: 0.001,
		TipAccounts: mustKeys(
			"TEMPaMeCRFAS9EKF53Jd6KpHxgL47uWLcpFArU1Fanq",
			"noz3jAjPiHuBPqiSPkkugaJDkJscPuRhYnSpbi8UvC4",
			"noz3str9KXfpKknefHji8L1mPgimezaiUyCHYMDv1GE",
			"noz6uoYCDijhu1V7cutCpwxNiSovEwLdRHPwmgCGDNo",
			"noz9EPNcT7WH6Sou3sr3GGjHQYVkN3DNirpbvDkv9YJ",
			"nozc5yT15LazbLTFVZzoNZCwjh3yUtW86LoUyqsBu4L",
			"nozFrhfnNGoyqwVuwPAW4aaGqempx4PU6g6D9CJMv7Z",
			"nozievPk7HyK1Rqy1MPJwVQ7qQg2QoJGyP71oeDwbsu",
			"noznbgwYnBLDHu8wcQVCEw6kDrXkPdKkydGJGNXGvL7",
			"nozNVWs5N8mgzuD3qigrCG2UoKxZttxzZ85pvAQVrbP",
			"nozpEGbwx4BcGp6pvEdAh1JoC2CQGZdU6HbNP1v2p6P",
			"nozrhjhkCr3zXT3BiT4WCodYCUFeQvcdUkM7MqhKqge",
			"nozrwQtWhEdrA6W8dkbt9gnUaMs52PdAv5byipnadq3",
			"nozUacTVWub3cL4mJmGCYjKZTnE9RbdY5AP46iQgbPJ",
			"nozWCyTPppJjRuw2fpzDhhWbW355fzosWSzrrMYB1Qk",
			"nozWNju6dY353eMkMqURqwQEoM3SFgEKC6psLCSfUne",
			"nozxNBgWohjR75vdspfxR5H9ceC7XXH99xpxhVGt3Bb",
		),
		Regions: map[string]string{
			"PITT": "https://pit1.secure.nozomi.temporal.xyz/?c=",
			"TYO":  "http://tyo1.secure.nozomi.temporal.xyz/?c=",
			"SG":   "http://sgp1.secure.nozomi.temporal.xyz/?c=",
			"EWR":  "https://ewr1.secure.nozomi.temporal.xyz/?c=",
			"AMS":  "https://ams1.secure.nozomi.temporal.xyz/?c=",
			"FRA":  "http://fra2.secure.nozomi.temporal.xyz/?c=",
		},
	},
	ProviderAstralane: {
		Provider:  ProviderAstralane,
		MinTipSOL: 0.00001,
		TipAccounts: mustKeys(
			"astrazznxsGUhWShqgNtAdfrzP2G83DzcWVJDxwV9bF",
			"astra4uejePWneqNaJKuFFA8oonqCE1sqF6b45kDMZm",
			"astra9xWY93QyfG6yM8zwsKsRodscjQ2uU2HKNL5prk",
			"astraRVUuTHjpwEVvNBeQEgwYx9w9CFyfxjYoobCZhL",
			"astraEJ2fEj8Xmy6KLG7B3VfbKfsHXhHrNdCQx7iGJK",
			"astraubkDw81n4LuutzSQ8uzHCv4BhPVhfvTcYv8SKC",
			"astraZW5GLFefxNPAatceHhYjfA1ciq9gvfEg2S47xk",
			"astrawVNP4xDBKT7rAdxrLYiTSTdqtUr63fSMduivXK",
		),
		Regions: map[string]string{
			"FR":  "http://fr.gateway.astralane.io/iris",
			"LAX": "http://lax.gateway.astralane.io/iris",
			"JP":  "http://jp.gateway.astralane.io/iris",
			"NY":  "http://ny.gateway.astralane.io/iris",
			"AMS": "http://ams.gateway.astralane.io/iris",
			"LIM": "http://lim.gateway.astralane.io/iris",
		},
	},
}

// PolicyFor returns the tip policy of a relay. STANDARD has none.
func PolicyFor(p Provider) (TipPolicy, bool) {
	policy, ok := policies[p]
	return policy, ok
}
