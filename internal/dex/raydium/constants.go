// internal/dex/raydium/constants.go
package raydium

// CPMMPoolDiscriminator is the Anchor discriminator of PoolState.
var CPMMPoolDiscriminator = []byte{247, 237, 227, 245, 215, 195, 222, 70}

// CPMM pool layout constants
const (
	CPMMBaseReserveOffset  = 73
	CPMMQuoteReserveOffset = 81
	CPMMTradeFeeOffset     = 89
	CPMMProtocolFeeOffset  = 97
	CPMMFundFeeOffset      = 105
	cpmmStateSize          = CPMMFundFeeOffset + 8

	TokenDecimals = 6
	SolDecimals   = 9
)
