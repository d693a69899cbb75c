package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/navalha-app/navalha/services/payment-service/internal/confirm"
	"github.com/navalha-app/navalha/services/payment-service/internal/outbox"
	"github.com/navalha-app/navalha/services/payment-service/internal/provider"
	"github.com/navalha-app/navalha/services/payment-service/internal/storage"
)

type Handler struct {
	repo       *storage.Repository
	outboxRepo *outbox.Repository
	logger     *slog.Logger

	card provider.Provider
	pix  provider.Provider

	poller *confirm.Poller

	stripeWebhookSecret    string
	stripeWebhookTolerance time.Duration
}

type Config struct {
	Card                          provider.Provider
	Pix                           provider.Provider
	Poller                        *confirm.Poller
	StripeWebhookSecret           string
	StripeWebhookToleranceSeconds int
}

func New(repo *storage.Repository, outboxRepo *outbox.Repository, logger *slog.Logger, cfg Config) *Handler {
	tolSeconds := cfg.StripeWebhookToleranceSeconds
	if tolSeconds <= 0 {
		tolSeconds = 300
	}
	return &Handler{
		repo:                   repo,
		outboxRepo:             outboxRepo,
		logger:                 logger,
		card:                   cfg.Card,
		pix:                    cfg.Pix,
		poller:                 cfg.Poller,
		stripeWebhookSecret:    strings.TrimSpace(cfg.StripeWebhookSecret),
		stripeWebhookTolerance: time.Duration(tolSeconds) * time.Second,
	}
}

type checkoutRequest struct {
	BusinessID    string `json:"business_id"`
	AppointmentID string `json:"appointment_id"`
	Method        string `json:"method"`
	AmountCents   int64  `json:"amount_cents"`
	Description   string `json:"description"`
	CustomerEmail string `json:"customer_email"`
}

type sessionResponse struct {
	PaymentID   string `json:"payment_id"`
	Provider    string `json:"provider"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	PixCode     string `json:"pix_code,omitempty"`
	PixQRCode   string `json:"pix_qr_code_base64,omitempty"`
}

// Checkout creates a charge with the provider matching the payment method and
// records the session as awaiting_payment.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.BusinessID == "" || req.AppointmentID == "" {
		http.Error(w, "business_id and appointment_id are required", http.StatusBadRequest)
		return
	}
	if req.AmountCents <= 0 {
		http.Error(w, "amount_cents must be positive", http.StatusBadRequest)
		return
	}

	var prov provider.Provider
	switch strings.ToLower(strings.TrimSpace(req.Method)) {
	case "card":
		prov = h.card
	case "pix":
		prov = h.pix
	default:
		http.Error(w, "method must be card or pix", http.StatusBadRequest)
		return
	}

	session, err := prov.CreateCharge(r.Context(), provider.Charge{
		BusinessID:    req.BusinessID,
		AppointmentID: req.AppointmentID,
		AmountCents:   req.AmountCents,
		Description:   req.Description,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			writeJSON(w, http.StatusNotImplemented, map[string]any{
				"error":    "provider_not_configured",
				"provider": prov.Name(),
			})
			return
		}
		h.logger.Error("charge creation failed", "provider", prov.Name(), "err", err)
		http.Error(w, "provider error", http.StatusBadGateway)
		return
	}

	tx, err := h.repo.Begin(r.Context())
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(r.Context()) }()

	paymentID, err := h.repo.CreateSession(r.Context(), tx, storage.PaymentSession{
		BusinessID:       req.BusinessID,
		AppointmentID:    req.AppointmentID,
		Provider:         prov.Name(),
		ProviderChargeID: session.ProviderChargeID,
		AmountCents:      req.AmountCents,
		Status:           "awaiting_payment",
		CheckoutURL:      session.CheckoutURL,
		PixCode:          session.PixCode,
		PixQRCodeBase64:  session.PixQRCodeBase64,
	})
	if err != nil {
		http.Error(w, "failed to record payment session", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(r.Context()); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("payment session created",
		"payment_id", paymentID,
		"provider", prov.Name(),
		"appointment_id", req.AppointmentID,
		"amount_cents", req.AmountCents,
	)
	writeJSON(w, http.StatusCreated, sessionResponse{
		PaymentID:   paymentID,
		Provider:    prov.Name(),
		Status:      "awaiting_payment",
		AmountCents: req.AmountCents,
		CheckoutURL: session.CheckoutURL,
		PixCode:     session.PixCode,
		PixQRCode:   session.PixQRCodeBase64,
	})
}

type confirmRequest struct {
	BusinessID string `json:"business_id"`
	PaymentID  string `json:"payment_id"`
}

type confirmResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
}

// Confirm polls the provider for the charge's outcome. Still-pending after
// the attempt budget is a normal answer, not an error.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.BusinessID) == "" || strings.TrimSpace(req.PaymentID) == "" {
		http.Error(w, "business_id and payment_id are required", http.StatusBadRequest)
		return
	}

	session, err := h.repo.GetSession(r.Context(), req.BusinessID, req.PaymentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "payment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if session.Status != "awaiting_payment" && session.Status != "pending" {
		writeJSON(w, http.StatusOK, confirmResponse{PaymentID: session.ID, Status: session.Status, Attempts: 0})
		return
	}

	prov := h.providerByName(session.Provider)
	if prov == nil {
		http.Error(w, "unknown provider", http.StatusInternalServerError)
		return
	}

	result, err := h.poller.Run(r.Context(), prov, session.ProviderChargeID)
	if err != nil {
		h.logger.Error("charge poll failed", "payment_id", session.ID, "provider", session.Provider, "err", err)
		http.Error(w, "provider error", http.StatusBadGateway)
		return
	}

	status := string(result.Status)
	if result.Status != provider.StatusPending {
		if err := h.settle(r.Context(), session, status); err != nil {
			http.Error(w, "failed to record payment outcome", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, confirmResponse{PaymentID: session.ID, Status: status, Attempts: result.Attempts})
}

// Status returns the stored session state without touching the provider.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
	paymentID := strings.TrimSpace(r.URL.Query().Get("payment_id"))
	if businessID == "" || paymentID == "" {
		http.Error(w, "business_id and payment_id are required", http.StatusBadRequest)
		return
	}
	session, err := h.repo.GetSession(r.Context(), businessID, paymentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "payment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		PaymentID:   session.ID,
		Provider:    session.Provider,
		Status:      session.Status,
		AmountCents: session.AmountCents,
		CheckoutURL: session.CheckoutURL,
		PixCode:     session.PixCode,
		PixQRCode:   session.PixQRCodeBase64,
	})
}

func (h *Handler) providerByName(name string) provider.Provider {
	switch {
	case h.card != nil && h.card.Name() == name:
		return h.card
	case h.pix != nil && h.pix.Name() == name:
		return h.pix
	}
	return nil
}

// settle moves the session to a terminal state and emits the matching charge
// event in the same transaction. A session already settled by the webhook
// path is left alone.
func (h *Handler) settle(ctx context.Context, session storage.PaymentSession, status string) error {
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.settleInTx(ctx, tx, session, status); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (h *Handler) settleInTx(ctx context.Context, tx pgx.Tx, session storage.PaymentSession, status string) error {
	moved, err := h.repo.SetStatus(ctx, tx, session.ID, status)
	if err != nil {
		return err
	}
	if !moved {
		h.logger.Info("payment already settled", "payment_id", session.ID, "status", status)
		return nil
	}

	topic := ""
	switch status {
	case "paid":
		topic = outbox.TopicChargeConfirmed
	case "expired":
		topic = outbox.TopicChargeExpired
	case "failed":
		topic = outbox.TopicChargeFailed
	default:
		return nil
	}

	payload, err := json.Marshal(outbox.ChargeEvent{
		PaymentID:     session.ID,
		BusinessID:    session.BusinessID,
		AppointmentID: session.AppointmentID,
		Provider:      session.Provider,
		AmountCents:   session.AmountCents,
		Status:        status,
	})
	if err != nil {
		return err
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "payment",
		AggregateID:   session.ID,
		EventType:     topic,
		Payload:       payload,
	}); err != nil {
		return err
	}

	h.logger.Info("payment settled",
		"payment_id", session.ID,
		"appointment_id", session.AppointmentID,
		"provider", session.Provider,
		"status", status,
	)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
