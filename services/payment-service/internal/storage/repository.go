package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/navalha-app/navalha/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// PaymentSession tracks one charge from creation to settlement. Status moves
// pending -> awaiting_payment -> paid | expired | failed.
type PaymentSession struct {
	ID               string
	BusinessID       string
	AppointmentID    string
	Provider         string
	ProviderChargeID string
	AmountCents      int64
	Status           string
	CheckoutURL      string
	PixCode          string
	PixQRCodeBase64  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *Repository) CreateSession(ctx context.Context, tx pgx.Tx, s PaymentSession) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO payment_sessions
			(id, business_id, appointment_id, provider, provider_charge_id, amount_cents,
			 status, checkout_url, pix_code, pix_qr_base64)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, s.BusinessID, s.AppointmentID, s.Provider, s.ProviderChargeID, s.AmountCents,
		s.Status, s.CheckoutURL, s.PixCode, s.PixQRCodeBase64)
	if err != nil {
		return "", err
	}
	return id, nil
}

const sessionColumns = `id::text, business_id::text, appointment_id::text, provider, provider_charge_id,
		amount_cents, status, COALESCE(checkout_url, ''), COALESCE(pix_code, ''), COALESCE(pix_qr_base64, ''),
		created_at, updated_at`

func scanSession(row pgx.Row) (PaymentSession, error) {
	var s PaymentSession
	err := row.Scan(
		&s.ID,
		&s.BusinessID,
		&s.AppointmentID,
		&s.Provider,
		&s.ProviderChargeID,
		&s.AmountCents,
		&s.Status,
		&s.CheckoutURL,
		&s.PixCode,
		&s.PixQRCodeBase64,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

func (r *Repository) GetSession(ctx context.Context, businessID, sessionID string) (PaymentSession, error) {
	return scanSession(r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM payment_sessions
		WHERE id = $1 AND business_id = $2
	`, sessionID, businessID))
}

func (r *Repository) GetSessionForUpdate(ctx context.Context, tx pgx.Tx, businessID, sessionID string) (PaymentSession, error) {
	return scanSession(tx.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM payment_sessions
		WHERE id = $1 AND business_id = $2
		FOR UPDATE
	`, sessionID, businessID))
}

// GetSessionByChargeID resolves the session a provider webhook refers to.
func (r *Repository) GetSessionByChargeID(ctx context.Context, tx pgx.Tx, providerName, providerChargeID string) (PaymentSession, error) {
	return scanSession(tx.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM payment_sessions
		WHERE provider = $1 AND provider_charge_id = $2
		FOR UPDATE
	`, providerName, providerChargeID))
}

// SetStatus advances a session. Terminal states never move again, so replayed
// webhooks and late poll results fall through with no row updated.
func (r *Repository) SetStatus(ctx context.Context, tx pgx.Tx, sessionID, status string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE payment_sessions
		SET status = $2,
			updated_at = now()
		WHERE id = $1
			AND status IN ('pending', 'awaiting_payment')
	`, sessionID, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type ProviderEvent struct {
	Provider        string
	ProviderEventID string
	EventType       string
	Payload         []byte
}

var ErrDuplicateProviderEvent = errors.New("duplicate provider event")

func (r *Repository) InsertProviderEvent(ctx context.Context, tx pgx.Tx, evt ProviderEvent) error {
	tag, err := tx.Exec(ctx, `
		INSERT INTO provider_events (provider, provider_event_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, provider_event_id) DO NOTHING
	`, evt.Provider, evt.ProviderEventID, evt.EventType, evt.Payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateProviderEvent
	}
	return nil
}
