// Package provider implements the identity provider contract: credential
// authentication (which issues an OTP and a bearer token) and the
// token-scoped loan information fetch.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	dErrors "fusebot/pkg/domain-errors"
	"fusebot/pkg/platform/circuit"
)

const (
	authenticatePath = "/api/bot/authenticate-client"
	loanInfoPath     = "/api/bot/client-loan-info"

	// integrityHeader carries the shared pre-shared token attached to every
	// provider request. Process-wide configuration, not per-session.
	integrityHeader = "fsn-hash"
)

var tracer = otel.Tracer("fusebot/internal/provider")

// Grant is the result of a successful credential authentication.
type Grant struct {
	OTP   string
	Token string
}

// Client talks to the identity provider over HTTP. All calls carry a bounded
// timeout; a timeout surfaces on the same failure path as an upstream error.
type Client struct {
	baseURL    string
	fsnHash    string
	httpClient *http.Client
	breaker    *circuit.Breaker
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBreaker guards provider calls with a circuit breaker: while open,
// calls fail fast with an upstream error instead of waiting out the timeout.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// New creates an identity provider client.
func New(baseURL, fsnHash string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		fsnHash: fsnHash,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// authenticateRequest is the request body for credential authentication.
type authenticateRequest struct {
	Email          string `json:"email"`
	EmployeeNumber string `json:"employee_number"`
	Tenant         string `json:"tenant"`
}

// authenticateResponse is the success envelope from the provider.
type authenticateResponse struct {
	Data struct {
		OTP   string `json:"otp"`
		Token string `json:"token"`
	} `json:"data"`
}

// errorResponse is the provider's error envelope. Message is logged upstream,
// never echoed to the end user.
type errorResponse struct {
	Message string `json:"message"`
}

// Authenticate submits credentials for the given tenant and returns the OTP
// and bearer token issued by the provider.
func (c *Client) Authenticate(ctx context.Context, email, employeeNumber, tenant string) (*Grant, error) {
	ctx, span := tracer.Start(ctx, "provider.Authenticate")
	span.SetAttributes(attribute.String("tenant", tenant))
	defer span.End()

	if !c.allow() {
		span.SetStatus(codes.Error, "circuit open")
		return nil, dErrors.New(dErrors.CodeUpstream, "identity provider unavailable")
	}

	reqBody, err := json.Marshal(authenticateRequest{
		Email:          email,
		EmployeeNumber: employeeNumber,
		Tenant:         tenant,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "marshal authenticate request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+authenticatePath, bytes.NewReader(reqBody))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create authenticate request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(integrityHeader, c.fsnHash)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "authenticate call failed")
		c.recordFailure()
		return nil, c.transportError(ctx, err, "authenticate call failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "read authenticate response")
	}
	c.recordStatus(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, fmt.Sprintf("provider status %d", resp.StatusCode))
		return nil, dErrors.New(dErrors.CodeUpstream, providerMessage(body, resp.Status))
	}

	var envelope authenticateResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeProtocol, "malformed authenticate response")
	}
	if envelope.Data.OTP == "" || envelope.Data.Token == "" {
		return nil, dErrors.New(dErrors.CodeProtocol, "authenticate response missing otp or token")
	}

	return &Grant{OTP: envelope.Data.OTP, Token: envelope.Data.Token}, nil
}

// FetchLoanInfo performs the bearer-authenticated loan information fetch.
// The payload is opaque to the bot. A 401 response is reported as
// CodeSessionExpired so callers force re-authentication instead of surfacing
// a generic upstream failure.
func (c *Client) FetchLoanInfo(ctx context.Context, tenant, employeeNumber, token string) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "provider.FetchLoanInfo")
	span.SetAttributes(attribute.String("tenant", tenant))
	defer span.End()

	if !c.allow() {
		span.SetStatus(codes.Error, "circuit open")
		return nil, dErrors.New(dErrors.CodeUpstream, "identity provider unavailable")
	}

	q := url.Values{}
	q.Set("tenant", tenant)
	q.Set("employee_number", employeeNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+loanInfoPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create loan info request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(integrityHeader, c.fsnHash)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "loan info call failed")
		c.recordFailure()
		return nil, c.transportError(ctx, err, "loan info call failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "read loan info response")
	}
	c.recordStatus(resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		span.SetStatus(codes.Error, "session expired")
		return nil, dErrors.New(dErrors.CodeSessionExpired, "provider rejected bearer token")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		span.SetStatus(codes.Error, fmt.Sprintf("provider status %d", resp.StatusCode))
		return nil, dErrors.New(dErrors.CodeUpstream, providerMessage(body, resp.Status))
	}

	return json.RawMessage(body), nil
}

func (c *Client) allow() bool {
	return c.breaker == nil || c.breaker.Allow()
}

func (c *Client) recordFailure() {
	if c.breaker != nil {
		c.breaker.RecordFailure()
	}
}

// recordStatus feeds the breaker: 5xx counts as a dependency failure, any
// other response proves the provider is reachable.
func (c *Client) recordStatus(statusCode int) {
	if c.breaker == nil {
		return
	}
	if statusCode >= 500 {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

// transportError maps network failures, distinguishing timeouts so they can
// be observed separately even though both are retryable.
func (c *Client) transportError(ctx context.Context, err error, msg string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg+": timeout")
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg+": timeout")
	}
	return dErrors.Wrap(err, dErrors.CodeUpstream, msg)
}

// providerMessage extracts the provider's error message, falling back to the
// HTTP status line when the body is not the expected envelope.
func providerMessage(body []byte, status string) string {
	var e errorResponse
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	return status
}
