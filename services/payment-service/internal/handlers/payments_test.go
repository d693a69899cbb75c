package handlers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/navalha-app/navalha/services/payment-service/internal/provider"
)

type stubProvider struct{ name string }

func (s stubProvider) Name() string { return s.name }
func (s stubProvider) CreateCharge(context.Context, provider.Charge) (provider.Session, error) {
	return provider.Session{}, nil
}
func (s stubProvider) CheckCharge(context.Context, string) (provider.Status, error) {
	return provider.StatusPending, nil
}

func TestProviderByName(t *testing.T) {
	h := New(nil, nil, slog.Default(), Config{
		Card: stubProvider{name: "stripe"},
		Pix:  stubProvider{name: "abacatepay"},
	})

	if p := h.providerByName("stripe"); p == nil || p.Name() != "stripe" {
		t.Fatalf("expected stripe provider, got %v", p)
	}
	if p := h.providerByName("abacatepay"); p == nil || p.Name() != "abacatepay" {
		t.Fatalf("expected abacatepay provider, got %v", p)
	}
	if p := h.providerByName("paypal"); p != nil {
		t.Fatalf("expected nil for unknown provider, got %v", p)
	}
}

func TestWebhookToleranceSeconds(t *testing.T) {
	h := New(nil, nil, slog.Default(), Config{})
	if h.stripeWebhookTolerance != 300*time.Second {
		t.Fatalf("unexpected default tolerance: %s", h.stripeWebhookTolerance)
	}

	h = New(nil, nil, slog.Default(), Config{StripeWebhookToleranceSeconds: 60})
	if h.stripeWebhookTolerance != time.Minute {
		t.Fatalf("unexpected tolerance: %s", h.stripeWebhookTolerance)
	}
}
