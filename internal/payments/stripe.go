// Package payments integrates with the Stripe REST API.  Only the
// three calls the club needs are implemented: creating a Checkout
// session, expiring one, and issuing a refund.  Requests are
// form-encoded and authenticated with the secret key; mutating calls
// carry an Idempotency-Key header so retried requests are safe.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.stripe.com"

// StripeClient talks to the Stripe API.
type StripeClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// NewStripeClient builds a client with the given secret key.  baseURL
// may be empty for production; tests point it at a local server.
func NewStripeClient(secretKey, baseURL string) *StripeClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &StripeClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
	}
}

// CheckoutParams describes the session to create.  Metadata keys are
// echoed back in the checkout.session.completed webhook and carry the
// registration reference.
type CheckoutParams struct {
	AmountCents uint32
	Currency    string
	ProductName string
	Quantity    uint32
	CustomerEmail string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is the subset of Stripe's session object the app uses.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentIntent string `json:"payment_intent"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
}

// Refund is the subset of Stripe's refund object the app uses.
type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// stripeError mirrors Stripe's error envelope.
type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession creates a hosted Checkout session in payment
// mode and returns its id and redirect URL.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	qty := p.Quantity
	if qty == 0 {
		qty = 1
	}
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("line_items[0][price_data][currency]", p.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatUint(uint64(p.AmountCents), 10))
	form.Set("line_items[0][price_data][product_data][name]", p.ProductName)
	form.Set("line_items[0][quantity]", strconv.FormatUint(uint64(qty), 10))
	if p.CustomerEmail != "" {
		form.Set("customer_email", p.CustomerEmail)
	}
	for k, v := range p.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var sess CheckoutSession
	if err := c.do(ctx, "POST", "/v1/checkout/sessions", form, &sess); err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &sess, nil
}

// ExpireCheckoutSession invalidates an open session, e.g. when a
// registration is cancelled before payment completes.
func (c *StripeClient) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	var sess CheckoutSession
	path := "/v1/checkout/sessions/" + url.PathEscape(sessionID) + "/expire"
	if err := c.do(ctx, "POST", path, url.Values{}, &sess); err != nil {
		return fmt.Errorf("expire checkout session: %w", err)
	}
	return nil
}

// CreateRefund refunds the full amount of a payment intent.
func (c *StripeClient) CreateRefund(ctx context.Context, paymentIntentID string) (*Refund, error) {
	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	var ref Refund
	if err := c.do(ctx, "POST", "/v1/refunds", form, &ref); err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}
	return &ref, nil
}

func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if method == "POST" {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var se stripeError
		if jerr := json.Unmarshal(body, &se); jerr == nil && se.Error.Message != "" {
			return fmt.Errorf("stripe %s: %s (%s)", path, se.Error.Message, se.Error.Code)
		}
		return fmt.Errorf("stripe %s: status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
