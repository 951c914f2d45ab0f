package payments

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

const whSecret = "whsec_test_0123456789"

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		header := SignPayload(payload, whSecret, now)
		if err := VerifySignature(payload, header, whSecret, DefaultTolerance, now); err != nil {
			t.Fatalf("valid signature rejected: %v", err)
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := SignPayload(payload, whSecret, now)
		bad := []byte(`{"id":"evt_1","type":"charge.refunded"}`)
		if err := VerifySignature(bad, header, whSecret, DefaultTolerance, now); !errors.Is(err, ErrSignatureMismatch) {
			t.Fatalf("want ErrSignatureMismatch, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := SignPayload(payload, "whsec_other", now)
		if err := VerifySignature(payload, header, whSecret, DefaultTolerance, now); !errors.Is(err, ErrSignatureMismatch) {
			t.Fatalf("want ErrSignatureMismatch, got %v", err)
		}
	})

	t.Run("stale timestamp", func(t *testing.T) {
		header := SignPayload(payload, whSecret, now.Add(-10*time.Minute))
		if err := VerifySignature(payload, header, whSecret, DefaultTolerance, now); !errors.Is(err, ErrTimestampTooOld) {
			t.Fatalf("want ErrTimestampTooOld, got %v", err)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		for _, h := range []string{"", "v1=abc", "t=notanumber,v1=abc", "garbage"} {
			if err := VerifySignature(payload, h, whSecret, DefaultTolerance, now); !errors.Is(err, ErrBadSignatureHeader) {
				t.Fatalf("header %q: want ErrBadSignatureHeader, got %v", h, err)
			}
		}
	})

	t.Run("multiple v1 entries", func(t *testing.T) {
		header := SignPayload(payload, whSecret, now)
		// Prepend a bogus v1; verification must accept when any entry matches.
		header = strings.Replace(header, ",v1=", ",v1=deadbeef,v1=", 1)
		if err := VerifySignature(payload, header, whSecret, DefaultTolerance, now); err != nil {
			t.Fatalf("signature with extra v1 entries rejected: %v", err)
		}
	})
}

func TestWebhookEventDecoding(t *testing.T) {
	body := []byte(`{
		"id": "evt_42",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test_1", "payment_intent": "pi_9", "payment_status": "paid", "amount_total": 15000, "currency": "nok", "metadata": {"reference": "reg-abc"}}}
	}`)
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != "checkout.session.completed" {
		t.Fatalf("type = %q", ev.Type)
	}
	var sess SessionObject
	if err := json.Unmarshal(ev.Data.Object, &sess); err != nil {
		t.Fatal(err)
	}
	if sess.PaymentIntent != "pi_9" || sess.Metadata["reference"] != "reg-abc" {
		t.Fatalf("unexpected session object: %+v", sess)
	}
}
