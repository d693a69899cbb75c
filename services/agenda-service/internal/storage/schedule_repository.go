package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/navalha-app/navalha/services/agenda-service/internal/model"
)

func (r *AgendaRepository) UpsertBusinessHour(ctx context.Context, h model.BusinessHour) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO business_hours (business_id, weekday, open_time, close_time, closed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (business_id, weekday)
		DO UPDATE SET open_time = EXCLUDED.open_time,
		              close_time = EXCLUDED.close_time,
		              closed = EXCLUDED.closed,
		              updated_at = now()
	`, h.BusinessID, h.Weekday, h.OpenTime, h.CloseTime, h.Closed)
	return err
}

func (r *AgendaRepository) ListBusinessHours(ctx context.Context, businessID string) ([]model.BusinessHour, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT business_id::text, weekday, open_time::text, close_time::text, closed
		FROM business_hours
		WHERE business_id = $1
		ORDER BY weekday
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []model.BusinessHour
	for rows.Next() {
		var h model.BusinessHour
		if err := rows.Scan(&h.BusinessID, &h.Weekday, &h.OpenTime, &h.CloseTime, &h.Closed); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return hours, nil
}

func (r *AgendaRepository) UpsertAvailability(ctx context.Context, a model.ProfessionalAvailability) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO professional_availability
			(professional_id, business_id, weekday, start_time, end_time, break_start, break_end, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (professional_id, weekday)
		DO UPDATE SET start_time = EXCLUDED.start_time,
		              end_time = EXCLUDED.end_time,
		              break_start = EXCLUDED.break_start,
		              break_end = EXCLUDED.break_end,
		              active = EXCLUDED.active,
		              updated_at = now()
	`, a.ProfessionalID, a.BusinessID, a.Weekday, a.StartTime, a.EndTime, a.BreakStart, a.BreakEnd, a.Active)
	return err
}

func (r *AgendaRepository) GetAvailability(ctx context.Context, professionalID string, weekday int) (model.ProfessionalAvailability, bool, error) {
	var a model.ProfessionalAvailability
	err := r.pool.QueryRow(ctx, `
		SELECT professional_id::text, business_id::text, weekday,
			start_time::text, end_time::text, break_start::text, break_end::text, active
		FROM professional_availability
		WHERE professional_id = $1 AND weekday = $2
	`, professionalID, weekday).Scan(
		&a.ProfessionalID,
		&a.BusinessID,
		&a.Weekday,
		&a.StartTime,
		&a.EndTime,
		&a.BreakStart,
		&a.BreakEnd,
		&a.Active,
	)
	if err != nil {
		if IsNotFound(err) {
			return model.ProfessionalAvailability{}, false, nil
		}
		return model.ProfessionalAvailability{}, false, err
	}
	return a, true, nil
}

func (r *AgendaRepository) ListAvailability(ctx context.Context, businessID, professionalID string) ([]model.ProfessionalAvailability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT professional_id::text, business_id::text, weekday,
			start_time::text, end_time::text, break_start::text, break_end::text, active
		FROM professional_availability
		WHERE business_id = $1 AND professional_id = $2
		ORDER BY weekday
	`, businessID, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAvailability(rows)
}

// ListWeekdayAvailability fetches every professional's rule for one weekday
// in a single read, for roster-wide slot listings.
func (r *AgendaRepository) ListWeekdayAvailability(ctx context.Context, businessID string, weekday int) ([]model.ProfessionalAvailability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT professional_id::text, business_id::text, weekday,
			start_time::text, end_time::text, break_start::text, break_end::text, active
		FROM professional_availability
		WHERE business_id = $1 AND weekday = $2
		ORDER BY professional_id
	`, businessID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAvailability(rows)
}

func collectAvailability(rows pgx.Rows) ([]model.ProfessionalAvailability, error) {
	var avail []model.ProfessionalAvailability
	for rows.Next() {
		var a model.ProfessionalAvailability
		if err := rows.Scan(
			&a.ProfessionalID,
			&a.BusinessID,
			&a.Weekday,
			&a.StartTime,
			&a.EndTime,
			&a.BreakStart,
			&a.BreakEnd,
			&a.Active,
		); err != nil {
			return nil, err
		}
		avail = append(avail, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return avail, nil
}

func (r *AgendaRepository) CreateTimeBlock(ctx context.Context, b *model.TimeBlock) (string, error) {
	var professionalID any
	if b.ProfessionalID != "" {
		professionalID = b.ProfessionalID
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO time_blocks (business_id, professional_id, start_time, end_time, reason, block_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, b.BusinessID, professionalID, b.StartTime, b.EndTime, b.Reason, b.BlockType).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *AgendaRepository) DeleteTimeBlock(ctx context.Context, businessID, blockID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM time_blocks
		WHERE id = $1 AND business_id = $2
	`, blockID, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListTimeBlocks returns blocks overlapping [from, to) for the business,
// business-wide blocks included.
func (r *AgendaRepository) ListTimeBlocks(ctx context.Context, businessID string, from, to time.Time) ([]model.TimeBlock, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, COALESCE(professional_id::text, ''),
			start_time, end_time, COALESCE(reason, ''), COALESCE(block_type, ''), created_at
		FROM time_blocks
		WHERE business_id = $1
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time ASC
	`, businessID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []model.TimeBlock
	for rows.Next() {
		var b model.TimeBlock
		if err := rows.Scan(
			&b.ID,
			&b.BusinessID,
			&b.ProfessionalID,
			&b.StartTime,
			&b.EndTime,
			&b.Reason,
			&b.BlockType,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return blocks, nil
}
