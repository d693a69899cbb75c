package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/navalha-app/navalha/libs/db"
	"github.com/navalha-app/navalha/services/agenda-service/internal/model"
)

type AgendaRepository struct {
	pool *db.Pool
}

func NewAgendaRepository(pool *db.Pool) *AgendaRepository {
	return &AgendaRepository{pool: pool}
}

func (r *AgendaRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

const appointmentColumns = `id, business_id, service_id, professional_id, client_name, client_phone, client_email,
		start_time, end_time, status, payment_method, payment_status, price_cents, COALESCE(notes, ''),
		cancelled_at, COALESCE(cancel_reason, ''), created_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var cancelledAt *time.Time
	err := row.Scan(
		&appt.ID,
		&appt.BusinessID,
		&appt.ServiceID,
		&appt.ProfessionalID,
		&appt.ClientName,
		&appt.ClientPhone,
		&appt.ClientEmail,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Status,
		&appt.PaymentMethod,
		&appt.PaymentStatus,
		&appt.PriceCents,
		&appt.Notes,
		&cancelledAt,
		&appt.CancelReason,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.CancelledAt = cancelledAt
	return appt, nil
}

func (r *AgendaRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(business_id, service_id, professional_id, client_name, client_phone, client_email,
			 start_time, end_time, status, payment_method, payment_status, price_cents, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, appt.BusinessID, appt.ServiceID, appt.ProfessionalID, appt.ClientName, appt.ClientPhone, appt.ClientEmail,
		appt.StartTime, appt.EndTime, appt.Status, appt.PaymentMethod, appt.PaymentStatus, appt.PriceCents, appt.Notes).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *AgendaRepository) Get(ctx context.Context, businessID, appointmentID string) (model.Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND business_id = $2
	`, appointmentID, businessID))
}

func (r *AgendaRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, businessID, appointmentID string) (model.Appointment, error) {
	return scanAppointment(tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND business_id = $2
		FOR UPDATE
	`, appointmentID, businessID))
}

func (r *AgendaRepository) Reschedule(ctx context.Context, tx pgx.Tx, businessID, appointmentID, professionalID string, start, end time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET professional_id = $3,
			start_time = $4,
			end_time = $5
		WHERE id = $1 AND business_id = $2
	`, appointmentID, businessID, professionalID, start, end)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AgendaRepository) Cancel(ctx context.Context, tx pgx.Tx, businessID, appointmentID, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
			cancelled_at = now(),
			cancel_reason = $3
		WHERE id = $1 AND business_id = $2
		RETURNING cancelled_at
	`, appointmentID, businessID, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

func (r *AgendaRepository) SetStatus(ctx context.Context, tx pgx.Tx, businessID, appointmentID, status string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = $3
		WHERE id = $1 AND business_id = $2
	`, appointmentID, businessID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkPaid settles the charge: the appointment is confirmed and the payment
// recorded as paid, but only while it is still awaiting payment.
func (r *AgendaRepository) MarkPaid(ctx context.Context, tx pgx.Tx, businessID, appointmentID string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = 'confirmed',
			payment_status = 'paid'
		WHERE id = $1 AND business_id = $2
			AND payment_status = 'awaiting_payment'
	`, appointmentID, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkPaymentOutcome records expired or failed charges without touching the
// appointment status.
func (r *AgendaRepository) MarkPaymentOutcome(ctx context.Context, tx pgx.Tx, businessID, appointmentID, paymentStatus string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET payment_status = $3
		WHERE id = $1 AND business_id = $2
			AND payment_status = 'awaiting_payment'
	`, appointmentID, businessID, paymentStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListBookedForDay returns appointments still holding their slot for one
// professional on one calendar day. Cancelled and no-show rows do not hold
// slots and are excluded here rather than in Go.
func (r *AgendaRepository) ListBookedForDay(ctx context.Context, businessID, professionalID string, dayStart, dayEnd time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE business_id = $1
			AND professional_id = $2
			AND status NOT IN ('cancelled', 'canceled', 'no_show')
			AND start_time < $4
			AND end_time > $3
		ORDER BY start_time ASC
	`, businessID, professionalID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *AgendaRepository) ListByBusiness(ctx context.Context, businessID string, from, to time.Time, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE business_id = $1
			AND start_time >= $2
			AND start_time < $3
		ORDER BY start_time ASC
		LIMIT $4
	`, businessID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (r *AgendaRepository) RevenueSummary(ctx context.Context, businessID string, from, to time.Time) ([]model.RevenueRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT professional_id::text, COUNT(*), COALESCE(SUM(price_cents), 0)
		FROM appointments
		WHERE business_id = $1
			AND status = 'completed'
			AND start_time >= $2
			AND start_time < $3
		GROUP BY professional_id
		ORDER BY professional_id
	`, businessID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RevenueRow
	for rows.Next() {
		var row model.RevenueRow
		if err := rows.Scan(&row.ProfessionalID, &row.Completed, &row.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// IsConflict reports whether an insert or update lost the slot race. The
// partial unique index on (professional_id, start_time) raises 23505; an
// exclusion constraint would raise 23P01.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23P01")
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
