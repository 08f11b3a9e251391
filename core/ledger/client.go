package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"payroll-monitor/core/reconcile"
	"payroll-monitor/core/utils"
)

var (
	// ErrUnexpectedStatus is returned for non-2xx responses, rate limiting included.
	ErrUnexpectedStatus = errors.New("unexpected ledger response status")
	// ErrMalformed is returned when the response body cannot be trusted.
	ErrMalformed = errors.New("malformed ledger response")
)

const maxBodyBytes = 4 << 20

// Client fetches transfer history over HTTP.
type Client struct {
	cfg  Config
	base *url.URL
	http *http.Client
}

// NewClient creates a ledger client based on the configuration.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid ledger base url %q", cfg.BaseURL)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 50
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &Client{
		cfg:  cfg,
		base: base,
		http: &http.Client{Transport: transport, Timeout: timeoutDuration},
	}, nil
}

// Transfers implements reconcile.TransferSource.
func (c *Client) Transfers(ctx context.Context, address string) ([]reconcile.Transfer, error) {
	if address == "" {
		return nil, errors.New("empty address")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("TRON-PRO-API-KEY", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodyBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(body, 256))
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return decodeTransfers(body)
}

func (c *Client) endpoint(address string) string {
	u := *c.base
	u.Path = u.Path + "/v1/accounts/" + url.PathEscape(address) + "/transactions/trc20"

	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.cfg.Limit))
	if c.cfg.TokenContract != "" {
		q.Set("contract_address", c.cfg.TokenContract)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// decodeTransfers parses a TronGrid trc20 history body, keeping the reported order.
func decodeTransfers(r io.Reader) ([]reconcile.Transfer, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if raw, ok := payload["success"]; ok {
		success, err := utils.ToBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: success: %v", ErrMalformed, err)
		}
		if !success {
			return nil, fmt.Errorf("%w: api reported failure: %v", ErrMalformed, payload["error"])
		}
	}

	data, ok := payload["data"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: data is not a list", ErrMalformed)
	}

	transfers := make([]reconcile.Transfer, 0, len(data))
	for i, item := range data {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is not an object", ErrMalformed, i)
		}
		tx, err := decodeEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		transfers = append(transfers, tx)
	}
	return transfers, nil
}

func decodeEntry(entry map[string]any) (reconcile.Transfer, error) {
	to, err := utils.ToString(entry["to"])
	if err != nil {
		return reconcile.Transfer{}, fmt.Errorf("to: %w", err)
	}
	hash, err := utils.ToString(entry["transaction_id"])
	if err != nil {
		return reconcile.Transfer{}, fmt.Errorf("transaction_id: %w", err)
	}
	value, err := utils.ToDecimal(entry["value"])
	if err != nil {
		return reconcile.Transfer{}, fmt.Errorf("value: %w", err)
	}
	if value.IsNegative() || !value.Equal(value.Truncate(0)) {
		return reconcile.Transfer{}, fmt.Errorf("value: %s is not a non-negative integer", value)
	}
	ms, err := utils.ToInt64(entry["block_timestamp"])
	if err != nil {
		return reconcile.Transfer{}, fmt.Errorf("block_timestamp: %w", err)
	}

	return reconcile.Transfer{
		Recipient: to,
		RawAmount: value,
		BlockTime: time.UnixMilli(ms).UTC(),
		Hash:      hash,
	}, nil
}
