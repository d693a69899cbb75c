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

type BusinessProfile struct {
	BusinessID        string
	Name              string
	Timezone          string
	SlotBufferMinutes int
}

// GetOrCreateProfile seeds a default profile on first read so a freshly
// onboarded tenant can take bookings before touching settings.
func (r *Repository) GetOrCreateProfile(ctx context.Context, businessID string) (BusinessProfile, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO business_profiles (business_id)
		VALUES ($1)
		ON CONFLICT (business_id) DO NOTHING
	`, businessID)
	if err != nil {
		return BusinessProfile{}, err
	}

	var p BusinessProfile
	err = r.pool.QueryRow(ctx, `
		SELECT business_id::text, name, timezone, slot_buffer_minutes
		FROM business_profiles
		WHERE business_id = $1
	`, businessID).Scan(&p.BusinessID, &p.Name, &p.Timezone, &p.SlotBufferMinutes)
	return p, err
}

func (r *Repository) UpdateProfile(ctx context.Context, tx pgx.Tx, p BusinessProfile) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO business_profiles (business_id, name, timezone, slot_buffer_minutes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (business_id) DO UPDATE
		SET name = EXCLUDED.name,
			timezone = EXCLUDED.timezone,
			slot_buffer_minutes = EXCLUDED.slot_buffer_minutes,
			updated_at = now()
	`, p.BusinessID, p.Name, p.Timezone, p.SlotBufferMinutes)
	return err
}

type CatalogService struct {
	ID           string
	BusinessID   string
	Name         string
	DurationMins int
	PriceCents   int64
	Description  string
	Active       bool
	CreatedAt    time.Time
}

func (r *Repository) CreateService(ctx context.Context, tx pgx.Tx, s CatalogService) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO services (id, business_id, name, duration_minutes, price_cents, description, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, s.BusinessID, s.Name, s.DurationMins, s.PriceCents, s.Description, s.Active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) UpdateService(ctx context.Context, tx pgx.Tx, s CatalogService) error {
	tag, err := tx.Exec(ctx, `
		UPDATE services
		SET name = $3,
			duration_minutes = $4,
			price_cents = $5,
			description = $6,
			active = $7,
			updated_at = now()
		WHERE id = $1 AND business_id = $2
	`, s.ID, s.BusinessID, s.Name, s.DurationMins, s.PriceCents, s.Description, s.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) GetService(ctx context.Context, businessID, serviceID string) (CatalogService, error) {
	var s CatalogService
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, business_id::text, name, duration_minutes, price_cents, COALESCE(description, ''), active, created_at
		FROM services
		WHERE id = $1 AND business_id = $2
	`, serviceID, businessID).Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMins, &s.PriceCents, &s.Description, &s.Active, &s.CreatedAt)
	return s, err
}

func (r *Repository) ListServices(ctx context.Context, businessID string, limit int) ([]CatalogService, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, name, duration_minutes, price_cents, COALESCE(description, ''), active, created_at
		FROM services
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CatalogService
	for rows.Next() {
		var s CatalogService
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMins, &s.PriceCents, &s.Description, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

type Professional struct {
	ID         string
	BusinessID string
	Name       string
	Phone      string
	Active     bool
	CreatedAt  time.Time
}

func (r *Repository) CreateProfessional(ctx context.Context, tx pgx.Tx, businessID, name, phone string) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO professionals (id, business_id, name, phone, active)
		VALUES ($1, $2, $3, $4, true)
	`, id, businessID, name, phone)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) SetProfessionalActive(ctx context.Context, tx pgx.Tx, businessID, professionalID string, active bool) (Professional, error) {
	var p Professional
	err := tx.QueryRow(ctx, `
		UPDATE professionals
		SET active = $3,
			updated_at = now()
		WHERE id = $1 AND business_id = $2
		RETURNING id::text, business_id::text, name, COALESCE(phone, ''), active, created_at
	`, professionalID, businessID, active).Scan(&p.ID, &p.BusinessID, &p.Name, &p.Phone, &p.Active, &p.CreatedAt)
	if err != nil {
		return Professional{}, err
	}
	return p, nil
}

func (r *Repository) ListProfessionals(ctx context.Context, businessID string, limit int) ([]Professional, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, name, COALESCE(phone, ''), active, created_at
		FROM professionals
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Professional
	for rows.Next() {
		var p Professional
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Name, &p.Phone, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

type Client struct {
	ID         string
	BusinessID string
	Name       string
	Phone      string
	Email      string
	Notes      string
	CreatedAt  time.Time
}

func (r *Repository) CreateClient(ctx context.Context, c Client) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clients (id, business_id, name, phone, email, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, c.BusinessID, c.Name, c.Phone, c.Email, c.Notes)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) SearchClients(ctx context.Context, businessID, query string, limit int) ([]Client, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(notes, ''), created_at
		FROM clients
		WHERE business_id = $1
			AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR phone LIKE '%' || $2 || '%')
		ORDER BY name ASC
		LIMIT $3
	`, businessID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
