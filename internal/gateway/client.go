// Package gateway sends JSON requests to the SUMIT API. Callers embed the
// credentials in the request body; this layer owns URLs, headers, timeouts,
// TLS policy, and redacted logging.
package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sumitpay/internal/config"
	apperrors "sumitpay/internal/errors"
)

// Endpoint paths.
const (
	PathTransaction       = "/creditguy/gateway/transaction/"
	PathRefund            = "/creditguy/gateway/refund/"
	PathCompanyDetails    = "/website/companies/getdetails/"
	PathTokenizeSingleUse = "/creditguy/vault/tokenizesingleusejson/"
)

const (
	headerClient   = "X-OG-Client"
	headerClientIP = "X-OG-ClientIP"
)

// LogSink receives the redacted request and response lines.
type LogSink interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Credentials is embedded in every request body.
type Credentials struct {
	CompanyID    string `json:"CompanyID"`
	APIKey       string `json:"APIKey,omitempty"`
	APIPublicKey string `json:"APIPublicKey,omitempty"`
}

type Client struct {
	environment config.Environment
	baseURL     string
	devURL      string
	locale      string
	clientName  string
	httpClient  *http.Client
	log         LogSink
	metrics     *Metrics
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(cfg config.Configuration, sink LogSink, opts ...Option) *Client {
	c := &Client{
		environment: cfg.Gateway.Environment,
		baseURL:     cfg.Gateway.BaseURL,
		devURL:      cfg.Gateway.DevURL,
		locale:      cfg.Gateway.Locale,
		clientName:  cfg.Gateway.ClientName,
		log:         sink,
		httpClient: &http.Client{
			Timeout: cfg.Gateway.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				// Controlled by SUMIT_SSL_VERIFY.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.Gateway.SSLVerify}, //nolint:gosec
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildURL joins path onto the base URL of the configured environment.
func (c *Client) BuildURL(path string) string {
	if c.environment == config.EnvironmentDevelopment {
		return c.devURL + path
	}
	return c.baseURL + path
}

// Send posts body as JSON and decodes the envelope. A network failure or
// timeout yields ErrNoResponse; an undecodable body yields
// ErrMalformedResponse. A decoded envelope is returned as-is; callers decide
// whether it reports success.
func (c *Client) Send(ctx context.Context, body interface{}, path string, includeClientIP bool) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode gateway request: %w", err)
	}

	url := c.BuildURL(path)
	c.log.Debugf("Request to %s: %s", url, Redact(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Language", c.locale)
	req.Header.Set(headerClient, c.clientName)
	if includeClientIP {
		if ip := ClientIPFromContext(ctx); ip != "" {
			req.Header.Set(headerClientIP, ip)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(path, "no_response", time.Since(start))
		c.log.Errorf("No response from %s: %v", url, err)
		return nil, apperrors.ErrNoResponse.Wrap(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(path, "no_response", time.Since(start))
		c.log.Errorf("Reading response from %s: %v", url, err)
		return nil, apperrors.ErrNoResponse.Wrap(err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		c.metrics.observe(path, "malformed", time.Since(start))
		c.log.Errorf("Malformed response from %s (HTTP %d, %d bytes)", url, resp.StatusCode, len(raw))
		return nil, apperrors.ErrMalformedResponse.Wrap(err)
	}
	out.Raw = raw

	outcome := "ok"
	if !out.StatusOK() {
		outcome = "error_status"
	}
	c.metrics.observe(path, outcome, time.Since(start))
	c.log.Debugf("Response from %s (HTTP %d): %s", url, resp.StatusCode, Redact(raw))
	return &out, nil
}

type companyDetailsRequest struct {
	Credentials Credentials `json:"Credentials"`
}

// VerifyCredentials checks a company ID and private API key. It returns nil
// when the API accepts them.
func (c *Client) VerifyCredentials(ctx context.Context, companyID, apiKey string) error {
	resp, err := c.Send(ctx, companyDetailsRequest{
		Credentials: Credentials{CompanyID: companyID, APIKey: apiKey},
	}, PathCompanyDetails, false)
	return credentialResult(resp, err)
}

type singleUseTokenizeRequest struct {
	Credentials     Credentials `json:"Credentials"`
	CardNumber      string      `json:"CardNumber"`
	ExpirationMonth string      `json:"ExpirationMonth"`
	ExpirationYear  string      `json:"ExpirationYear"`
	CVV             string      `json:"CVV"`
	CitizenID       string      `json:"CitizenID"`
}

// VerifyPublicCredentials checks a company ID and public key by tokenizing
// a dummy card.
func (c *Client) VerifyPublicCredentials(ctx context.Context, companyID, publicKey string) error {
	resp, err := c.Send(ctx, singleUseTokenizeRequest{
		Credentials:     Credentials{CompanyID: companyID, APIPublicKey: publicKey},
		CardNumber:      "12345678",
		ExpirationMonth: "01",
		ExpirationYear:  "2030",
		CVV:             "123",
		CitizenID:       "123456789",
	}, PathTokenizeSingleUse, false)
	return credentialResult(resp, err)
}

func credentialResult(resp *Response, err error) error {
	if err != nil {
		if apperrors.IsTransport(err) {
			return apperrors.ErrNoResponse.WithMessage("No response from server").Wrap(err)
		}
		return err
	}
	if resp.StatusOK() {
		return nil
	}
	msg := resp.UserErrorMessage
	if msg == "" {
		msg = "Unknown error"
	}
	return apperrors.ErrGatewayDeclined.WithMessage(msg)
}

type clientIPKey struct{}

// WithClientIP attaches the end customer's IP for the optional client IP
// header.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
