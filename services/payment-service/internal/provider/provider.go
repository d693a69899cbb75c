package provider

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a provider is selected but its
// credentials are missing. Handlers map it to 501 provider_not_configured.
var ErrNotConfigured = errors.New("payment provider not configured")

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusExpired Status = "expired"
	StatusFailed  Status = "failed"
)

// Charge is a request to collect payment for one appointment.
type Charge struct {
	BusinessID    string
	AppointmentID string
	AmountCents   int64
	Description   string
	CustomerEmail string
}

// Session is the provider-side charge handle. Card checkouts carry a redirect
// URL; PIX charges carry the copy-and-paste code and QR image instead.
type Session struct {
	ProviderChargeID string
	CheckoutURL      string
	PixCode          string
	PixQRCodeBase64  string
	Status           Status
}

type Provider interface {
	Name() string
	CreateCharge(ctx context.Context, c Charge) (Session, error)
	CheckCharge(ctx context.Context, providerChargeID string) (Status, error)
}
