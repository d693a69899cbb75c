package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/navalha-app/navalha/services/agenda-service/internal/model"
)

// Local projections of business-service state, maintained by the Kafka
// consumer so slot queries never call across services.

func (r *AgendaRepository) UpsertBusinessProfile(ctx context.Context, tx pgx.Tx, p model.BusinessProfile) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO business_profiles_cache (business_id, name, timezone, slot_buffer_minutes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (business_id)
		DO UPDATE SET name = EXCLUDED.name,
		              timezone = EXCLUDED.timezone,
		              slot_buffer_minutes = EXCLUDED.slot_buffer_minutes,
		              updated_at = now()
	`, p.BusinessID, p.Name, p.Timezone, p.SlotBuffer)
	return err
}

func (r *AgendaRepository) GetBusinessProfile(ctx context.Context, businessID string) (model.BusinessProfile, bool, error) {
	var p model.BusinessProfile
	err := r.pool.QueryRow(ctx, `
		SELECT business_id::text, name, timezone, slot_buffer_minutes, updated_at
		FROM business_profiles_cache
		WHERE business_id = $1
	`, businessID).Scan(&p.BusinessID, &p.Name, &p.Timezone, &p.SlotBuffer, &p.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return model.BusinessProfile{}, false, nil
		}
		return model.BusinessProfile{}, false, err
	}
	return p, true, nil
}

func (r *AgendaRepository) UpsertCatalogService(ctx context.Context, tx pgx.Tx, s model.CatalogService) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO service_catalog_cache (service_id, business_id, name, duration_minutes, price_cents, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (service_id)
		DO UPDATE SET name = EXCLUDED.name,
		              duration_minutes = EXCLUDED.duration_minutes,
		              price_cents = EXCLUDED.price_cents,
		              active = EXCLUDED.active,
		              updated_at = now()
	`, s.ServiceID, s.BusinessID, s.Name, s.DurationMinutes, s.PriceCents, s.Active)
	return err
}

func (r *AgendaRepository) GetCatalogService(ctx context.Context, businessID, serviceID string) (model.CatalogService, bool, error) {
	var s model.CatalogService
	err := r.pool.QueryRow(ctx, `
		SELECT service_id::text, business_id::text, name, duration_minutes, price_cents, active, updated_at
		FROM service_catalog_cache
		WHERE service_id = $1 AND business_id = $2
	`, serviceID, businessID).Scan(&s.ServiceID, &s.BusinessID, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active, &s.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return model.CatalogService{}, false, nil
		}
		return model.CatalogService{}, false, err
	}
	return s, true, nil
}

func (r *AgendaRepository) UpsertProfessional(ctx context.Context, tx pgx.Tx, p model.Professional) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO professionals_cache (professional_id, business_id, name, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (professional_id)
		DO UPDATE SET name = EXCLUDED.name,
		              active = EXCLUDED.active,
		              updated_at = now()
	`, p.ProfessionalID, p.BusinessID, p.Name, p.Active)
	return err
}

func (r *AgendaRepository) ListActiveProfessionals(ctx context.Context, businessID string) ([]model.Professional, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT professional_id::text, business_id::text, name, active, updated_at
		FROM professionals_cache
		WHERE business_id = $1 AND active
		ORDER BY name
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pros []model.Professional
	for rows.Next() {
		var p model.Professional
		if err := rows.Scan(&p.ProfessionalID, &p.BusinessID, &p.Name, &p.Active, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pros = append(pros, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return pros, nil
}
