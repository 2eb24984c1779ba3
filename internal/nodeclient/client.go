// Package nodeclient is a minimal JSON-RPC 1.0 client for the node daemon.
// It covers only what the control tooling needs: readiness probes and stop.
package nodeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHost        = "127.0.0.1"
	defaultHTTPTimeout = 10 * time.Second
	requestID          = "anonctl"

	// CodeWarmup is the daemon's error code while it is still loading.
	CodeWarmup = -28
)

// ErrUnauthorized reports rejected RPC credentials.
var ErrUnauthorized = errors.New("rpc credentials rejected")

// RPCError is an error object returned by the daemon.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsWarmingUp reports whether err is the daemon's warmup response.
func IsWarmingUp(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == CodeWarmup
}

// Client talks to one daemon endpoint.
type Client struct {
	Host     string
	Port     int
	User     string
	Password string

	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New constructs a client for host:port authenticating as user.
func New(host string, port int, user, password string, opts ...Option) *Client {
	host = strings.TrimSpace(host)
	if host == "" {
		host = defaultHost
	}
	client := &Client{
		Host:       host,
		Port:       port,
		User:       user,
		Password:   password,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Endpoint returns the daemon URL.
func (c *Client) Endpoint() string {
	return "http://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) + "/"
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Call invokes method with params and decodes the result into out when out
// is non-nil.
func (c *Client) Call(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	encoded, err := json.Marshal(request{JSONRPC: "1.0", ID: requestID, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("rpc %s: encode request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("rpc %s: request: %w", method, err)
	}
	req.SetBasicAuth(c.User, c.Password)
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("rpc %s: %w", method, ErrUnauthorized)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rpc %s: read body: %w", method, err)
	}

	// The daemon reports RPC errors with a 500 status and a JSON body.
	var decoded response
	if err := json.Unmarshal(body, &decoded); err != nil {
		if resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("rpc %s: http %d: %s", method, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return fmt.Errorf("rpc %s: decode response: %w", method, err)
	}
	if decoded.Error != nil {
		return fmt.Errorf("rpc %s: %w", method, decoded.Error)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("rpc %s: http %d", method, resp.StatusCode)
	}
	if out == nil || len(decoded.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return fmt.Errorf("rpc %s: decode result: %w", method, err)
	}
	return nil
}

// Info is the subset of getinfo the tooling reports.
type Info struct {
	Version     int  `json:"version"`
	Blocks      int  `json:"blocks"`
	Connections int  `json:"connections"`
	Testnet     bool `json:"testnet"`
}

// Ping calls getinfo.
func (c *Client) Ping(ctx context.Context) (Info, error) {
	var info Info
	err := c.Call(ctx, "getinfo", nil, &info)
	return info, err
}

// Stop asks the daemon to shut down.
func (c *Client) Stop(ctx context.Context) error {
	return c.Call(ctx, "stop", nil, nil)
}
