package sender

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/config"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

func configWith(jito, nozomi, astralane bool) *config.Config {
	cfg := config.Default()
	if jito {
		cfg.JitoUUID = "jito-uuid"
	}
	if nozomi {
		cfg.NozomiAPIKey = "nozomi-key"
	}
	if astralane {
		cfg.AstralaneAPIKey = "astra-key"
	}
	return cfg
}

func firstPick(int) int { return 0 }

func TestChoose(t *testing.T) {
	tests := []struct {
		name                    string
		jito, nozomi, astralane bool
		explicit                Provider
		tip                     float64
		want                    Provider
	}{
		{name: "nothing configured, no tip", tip: 0, want: ProviderStandard},
		{name: "nothing configured, large tip", tip: 0.01, want: ProviderStandard},
		{name: "only jito above minimum", jito: true, tip: 0.001, want: ProviderJito},
		{name: "dust tip ignores explicit", jito: true, explicit: ProviderJito, tip: 0.000001, want: ProviderStandard},
		{name: "explicit jito honored", jito: true, nozomi: true, astralane: true, explicit: ProviderJito, tip: 0.01, want: ProviderJito},
		{name: "explicit nozomi below its minimum", nozomi: true, astralane: true, explicit: ProviderNozomi, tip: 0.0005, want: ProviderAstralane},
		{name: "explicit nozomi at minimum", nozomi: true, astralane: true, explicit: ProviderNozomi, tip: 0.001, want: ProviderNozomi},
		{name: "explicit unavailable falls back", astralane: true, explicit: ProviderJito, tip: 0.01, want: ProviderAstralane},
		{name: "explicit standard", jito: true, explicit: ProviderStandard, tip: 0.01, want: ProviderStandard},
		{name: "large tip prefers nozomi", jito: true, nozomi: true, astralane: true, tip: 0.002, want: ProviderNozomi},
		{name: "small tip prefers astralane", jito: true, nozomi: true, astralane: true, tip: 0.0005, want: ProviderAstralane},
		{name: "small tip without astralane", jito: true, nozomi: true, tip: 0.0005, want: ProviderNozomi},
		{name: "jito as last resort", jito: true, tip: 0.0005, want: ProviderJito},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(configWith(tt.jito, tt.nozomi, tt.astralane), zap.NewNop())
			assert.Equal(t, tt.want, r.Choose(tt.explicit, tt.tip))
		})
	}
}

func TestAvailable(t *testing.T) {
	r := NewRouter(configWith(false, false, true), zap.NewNop())
	assert.NoError(t, r.Available(ProviderStandard))
	assert.NoError(t, r.Available(ProviderAstralane))

	err := r.Available(ProviderNozomi)
	var unavailable *types.ProviderUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "NOZOMI", unavailable.Provider)
}

func TestRegion(t *testing.T) {
	r := NewRouter(config.Default(), zap.NewNop(), WithPicker(firstPick))

	code, url, err := r.Region(ProviderJito, " ny ")
	require.NoError(t, err)
	assert.Equal(t, "NY", code)
	assert.Equal(t, "https://ny.mainnet.block-engine.jito.wtf", url)

	// неизвестный регион: первый по алфавиту при firstPick
	code, url, err = r.Region(ProviderAstralane, "MARS")
	require.NoError(t, err)
	assert.Equal(t, "AMS", code)
	assert.Equal(t, "http://ams.gateway.astralane.io/iris", url)

	_, _, err = r.Region(ProviderStandard, "")
	assert.Error(t, err)
}

func TestProviderTip(t *testing.T) {
	r := NewRouter(config.Default(), zap.NewNop(), WithPicker(firstPick))

	account, lamports, err := r.ProviderTip(ProviderNozomi, 0.0001)
	require.NoError(t, err)
	assert.Equal(t, solana.MustPublicKeyFromBase58("TEMPaMeCRFAS9EKF53Jd6KpHxgL47uWLcpFArU1Fanq"), account)
	assert.Equal(t, uint64(1_000_000), lamports)

	_, lamports, err = r.ProviderTip(ProviderAstralane, 0.002)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), lamports)

	_, _, err = r.ProviderTip(ProviderStandard, 0.01)
	assert.Error(t, err)

	from := solana.NewWallet().PublicKey()
	ix, err := r.TipInstruction(ProviderJito, from, 0.001)
	require.NoError(t, err)
	accounts := ix.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, from, accounts[0].PublicKey)
	assert.Equal(t, solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"), accounts[1].PublicKey)
}

func TestPolicyTables(t *testing.T) {
	for provider, want := range map[Provider]struct {
		accounts int
		regions  int
	}{
		ProviderJito:      {accounts: 8, regions: 9},
		ProviderNozomi:    {accounts: 17, regions: 6},
		ProviderAstralane: {accounts: 8, regions: 6},
	} {
		policy, ok := PolicyFor(provider)
		require.True(t, ok)
		assert.Len(t, policy.TipAccounts, want.accounts, provider)
		assert.Len(t, policy.Regions, want.regions, provider)
	}
	_, ok := PolicyFor(ProviderStandard)
	assert.False(t, ok)

	nozomi, _ := PolicyFor(ProviderNozomi)
	assert.Equal(t, uint64(1_000_000), nozomi.MinTipLamports())
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("astralane")
	require.NoError(t, err)
	assert.Equal(t, ProviderAstralane, p)

	p, err = ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, Provider(""), p)

	_, err = ParseProvider("bloxroute")
	assert.True(t, types.IsValidationError(err))
}
