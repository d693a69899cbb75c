package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAbacatePayCreateCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/pixQrCode/create" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok_test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["amount"].(float64) != 5000 {
			t.Errorf("unexpected amount: %v", body["amount"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":           "pix_char_123",
				"brCode":       "000201...",
				"brCodeBase64": "aW1n",
				"status":       "PENDING",
			},
		})
	}))
	defer srv.Close()

	client := NewAbacatePay(srv.URL, "tok_test")
	session, err := client.CreateCharge(context.Background(), Charge{
		BusinessID:    "biz-1",
		AppointmentID: "appt-1",
		AmountCents:   5000,
		Description:   "Corte de cabelo",
	})
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}
	if session.ProviderChargeID != "pix_char_123" {
		t.Fatalf("unexpected charge id: %s", session.ProviderChargeID)
	}
	if session.PixCode != "000201..." {
		t.Fatalf("unexpected pix code: %s", session.PixCode)
	}
	if session.Status != StatusPending {
		t.Fatalf("unexpected status: %s", session.Status)
	}
}

func TestAbacatePayCheckCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/pixQrCode/check" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "pix_char_123" {
			t.Errorf("unexpected id: %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "pix_char_123", "status": "PAID"},
		})
	}))
	defer srv.Close()

	client := NewAbacatePay(srv.URL, "tok_test")
	status, err := client.CheckCharge(context.Background(), "pix_char_123")
	if err != nil {
		t.Fatalf("check charge: %v", err)
	}
	if status != StatusPaid {
		t.Fatalf("unexpected status: %s", status)
	}
}

func TestAbacatePayErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid amount"})
	}))
	defer srv.Close()

	client := NewAbacatePay(srv.URL, "tok_test")
	_, err := client.CreateCharge(context.Background(), Charge{AmountCents: -1})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestAbacatePayRequiresToken(t *testing.T) {
	client := NewAbacatePay("", "")
	if _, err := client.CreateCharge(context.Background(), Charge{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := client.CheckCharge(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestMapAbacateStatus(t *testing.T) {
	cases := map[string]Status{
		"PAID":      StatusPaid,
		"paid":      StatusPaid,
		"EXPIRED":   StatusExpired,
		"CANCELLED": StatusFailed,
		"REFUNDED":  StatusFailed,
		"PENDING":   StatusPending,
		"":          StatusPending,
	}
	for in, want := range cases {
		if got := mapAbacateStatus(in); got != want {
			t.Errorf("mapAbacateStatus(%q) = %s, want %s", in, got, want)
		}
	}
}
