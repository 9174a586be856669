// internal/sender/relay.go
package sender

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"golang.org/x/time/rate"
)

// statusCheckingClient fails requests answered with HTTP status >= 400 even
// when the body happens to be valid JSON-RPC.
type statusCheckingClient struct {
	client *http.Client
}

func (c *statusCheckingClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

func (c *statusCheckingClient) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

// relayTransport posts sendTransaction calls to relay endpoints.
type relayTransport struct {
	http    *statusCheckingClient
	limiter *rate.Limiter
}

func newRelayTransport(requestsPerSecond float64) *relayTransport {
	t := &relayTransport{
		http: &statusCheckingClient{client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		}},
	}
	if requestsPerSecond > 0 {
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return t
}

// sendTransaction returns the signature string reported by the relay.
func (t *relayTransport) sendTransaction(ctx context.Context, endpoint string, headers map[string]string, params []interface{}) (string, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	client := jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient:    t.http,
		CustomHeaders: headers,
	})

	var signature string
	if err := client.CallForInto(ctx, &signature, "sendTransaction", params); err != nil {
		return "", err
	}
	if signature == "" {
		return "", fmt.Errorf("relay returned an empty result")
	}
	return signature, nil
}
