// Package pumpfun decodes Pump.fun bonding curve accounts and quotes swaps
// against them natively.
//
// The curve is a constant product over virtual reserves:
//
//	k = virtualSol * virtualToken
//	buy:  out = virtualToken - k / (virtualSol + inAfterFee)
//	sell: out = (virtualSol - k / (virtualToken + in)) minus fee
//
// A curve whose complete flag is set has migrated and can no longer be traded.
//
// Usage example:
//
//	q := pumpfun.NewQuoter(client, logger)
//	quote, err := q.Quote(ctx, model.QuoteRequest{
//	    InputMint:   types.WSOL,
//	    OutputMint:  mint,
//	    Amount:      10_000_000,
//	    SlippageBps: 100,
//	})
package pumpfun
