package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateCheckoutSession(t *testing.T) {
	var gotAuth, gotIdem string
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("Idempotency-Key")
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/pay/cs_test_1","payment_status":"unpaid"}`))
	}))
	defer srv.Close()

	client := NewStripeClient("sk_test_abc", srv.URL)
	sess, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		AmountCents:   15000,
		Currency:      "nok",
		ProductName:   "Saturday Long Run",
		CustomerEmail: "kari@example.com",
		SuccessURL:    "https://club.example/ok",
		CancelURL:     "https://club.example/no",
		Metadata:      map[string]string{"reference": "ref-123"},
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if sess.ID != "cs_test_1" {
		t.Errorf("session id = %q, want cs_test_1", sess.ID)
	}
	if sess.URL == "" {
		t.Errorf("session url is empty")
	}

	if gotAuth != "Bearer sk_test_abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotIdem == "" {
		t.Errorf("missing Idempotency-Key header")
	}
	checks := map[string]string{
		"mode": "payment",
		"line_items[0][price_data][unit_amount]":        "15000",
		"line_items[0][price_data][currency]":           "nok",
		"line_items[0][price_data][product_data][name]": "Saturday Long Run",
		"line_items[0][quantity]":                       "1",
		"customer_email":                                "kari@example.com",
		"metadata[reference]":                           "ref-123",
	}
	for k, want := range checks {
		if got := first(gotForm[k]); got != want {
			t.Errorf("form[%s] = %q, want %q", k, got, want)
		}
	}
}

func TestCreateCheckoutSessionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	client := NewStripeClient("sk_test_abc", srv.URL)
	_, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		AmountCents: 100, Currency: "nok", ProductName: "x",
		SuccessURL: "https://s", CancelURL: "https://c",
	})
	if err == nil {
		t.Fatal("expected error for declined card")
	}
}

func TestCreateRefund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/refunds" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("payment_intent"); got != "pi_42" {
			t.Errorf("payment_intent = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"re_1","status":"succeeded"}`))
	}))
	defer srv.Close()

	client := NewStripeClient("sk_test_abc", srv.URL)
	ref, err := client.CreateRefund(context.Background(), "pi_42")
	if err != nil {
		t.Fatalf("CreateRefund: %v", err)
	}
	if ref.Status != "succeeded" {
		t.Errorf("refund status = %q", ref.Status)
	}
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}
