package provider

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
)

// Stripe charges cards through a one-off checkout session in payment mode.
// Prices are inline BRL amounts, no catalog objects on the Stripe side.
type Stripe struct {
	secretKey  string
	successURL string
	cancelURL  string
}

func NewStripe(secretKey, successURL, cancelURL string) *Stripe {
	return &Stripe{
		secretKey:  strings.TrimSpace(secretKey),
		successURL: strings.TrimSpace(successURL),
		cancelURL:  strings.TrimSpace(cancelURL),
	}
}

func (s *Stripe) Name() string {
	return "stripe"
}

func (s *Stripe) CreateCharge(_ context.Context, c Charge) (Session, error) {
	if s.secretKey == "" {
		return Session{}, ErrNotConfigured
	}

	stripe.Key = s.secretKey

	description := c.Description
	if description == "" {
		description = "Agendamento"
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(c.AppointmentID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("brl"),
					UnitAmount: stripe.Int64(c.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
			},
		},
		Metadata: map[string]string{
			"appointment_id": c.AppointmentID,
			"business_id":    c.BusinessID,
		},
	}
	if c.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(c.CustomerEmail)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return Session{}, err
	}
	return Session{
		ProviderChargeID: sess.ID,
		CheckoutURL:      sess.URL,
		Status:           StatusPending,
	}, nil
}

func (s *Stripe) CheckCharge(_ context.Context, providerChargeID string) (Status, error) {
	if s.secretKey == "" {
		return "", ErrNotConfigured
	}

	stripe.Key = s.secretKey
	sess, err := checkoutsession.Get(providerChargeID, nil)
	if err != nil {
		return "", err
	}
	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		return StatusPaid, nil
	}
	if sess.Status == stripe.CheckoutSessionStatusExpired {
		return StatusExpired, nil
	}
	return StatusPending, nil
}
