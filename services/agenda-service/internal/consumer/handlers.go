package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/navalha-app/navalha/services/agenda-service/internal/model"
	"github.com/navalha-app/navalha/services/agenda-service/internal/outbox"
	"github.com/navalha-app/navalha/services/agenda-service/internal/storage"
	"github.com/segmentio/kafka-go"
)

// ProfileHandler keeps the local business profile cache current.
func ProfileHandler(repo *storage.AgendaRepository) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt outbox.BusinessProfileEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return err
		}
		tx, err := repo.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := repo.UpsertBusinessProfile(ctx, tx, model.BusinessProfile{
			BusinessID: evt.BusinessID,
			Name:       evt.Name,
			Timezone:   evt.Timezone,
			SlotBuffer: evt.SlotBufferMinutes,
		}); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}
}

// CatalogHandler keeps the local service catalog cache current.
func CatalogHandler(repo *storage.AgendaRepository) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt outbox.CatalogServiceEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return err
		}
		tx, err := repo.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := repo.UpsertCatalogService(ctx, tx, model.CatalogService{
			ServiceID:       evt.ServiceID,
			BusinessID:      evt.BusinessID,
			Name:            evt.Name,
			DurationMinutes: evt.DurationMinutes,
			PriceCents:      evt.PriceCents,
			Active:          evt.Active,
		}); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}
}

// ProfessionalHandler keeps the local professional roster current.
func ProfessionalHandler(repo *storage.AgendaRepository) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt outbox.ProfessionalEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return err
		}
		tx, err := repo.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := repo.UpsertProfessional(ctx, tx, model.Professional{
			ProfessionalID: evt.ProfessionalID,
			BusinessID:     evt.BusinessID,
			Name:           evt.Name,
			Active:         evt.Active,
		}); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}
}

// ChargeHandler applies payment outcomes to appointments. A paid charge
// confirms the appointment; expired and failed charges only mark the payment
// so staff can follow up.
func ChargeHandler(repo *storage.AgendaRepository, logger *slog.Logger) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt outbox.ChargeEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return err
		}
		if evt.AppointmentID == "" {
			logger.Warn("charge event without appointment", "payment_id", evt.PaymentID)
			return nil
		}

		tx, err := repo.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		switch msg.Topic {
		case outbox.TopicChargeConfirmed:
			err = repo.MarkPaid(ctx, tx, evt.BusinessID, evt.AppointmentID)
		case outbox.TopicChargeExpired:
			err = repo.MarkPaymentOutcome(ctx, tx, evt.BusinessID, evt.AppointmentID, model.PaymentStatusExpired)
		case outbox.TopicChargeFailed:
			err = repo.MarkPaymentOutcome(ctx, tx, evt.BusinessID, evt.AppointmentID, model.PaymentStatusFailed)
		default:
			return nil
		}
		if err != nil {
			if storage.IsNotFound(err) {
				// Already settled or unknown appointment. Safe to drop.
				logger.Info("charge event had no matching awaiting appointment",
					"appointment_id", evt.AppointmentID, "topic", msg.Topic)
				return nil
			}
			return err
		}
		return tx.Commit(ctx)
	}
}
