package outbox

import "time"

// Kafka topic per event type. Agenda owns the appointment lifecycle topics;
// the business and payment topics are consumed here, never produced.
const (
	TopicAppointmentBooked      = "agenda.appointment.booked.v1"
	TopicAppointmentRescheduled = "agenda.appointment.rescheduled.v1"
	TopicAppointmentCancelled   = "agenda.appointment.cancelled.v1"

	TopicBusinessProfileUpdated      = "business.profile.updated.v1"
	TopicBusinessCatalogUpdated      = "business.catalog.updated.v1"
	TopicBusinessProfessionalUpdated = "business.professional.updated.v1"

	TopicChargeConfirmed = "payment.charge.confirmed.v1"
	TopicChargeExpired   = "payment.charge.expired.v1"
	TopicChargeFailed    = "payment.charge.failed.v1"
)

// Event is the domain event envelope written to the outbox table.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type AppointmentEvent struct {
	AppointmentID  string     `json:"appointment_id"`
	BusinessID     string     `json:"business_id"`
	ServiceID      string     `json:"service_id"`
	ProfessionalID string     `json:"professional_id"`
	ClientName     string     `json:"client_name"`
	ClientPhone    string     `json:"client_phone"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	Status         string     `json:"status"`
	PaymentMethod  string     `json:"payment_method"`
	PriceCents     int64      `json:"price_cents"`
	PreviousStart  *time.Time `json:"previous_start,omitempty"`
	CancelReason   string     `json:"cancel_reason,omitempty"`
}

// BusinessProfileEvent mirrors what business-service publishes on
// business.profile.updated.v1.
type BusinessProfileEvent struct {
	BusinessID        string `json:"business_id"`
	Name              string `json:"name"`
	Timezone          string `json:"timezone"`
	SlotBufferMinutes int    `json:"slot_buffer_minutes"`
}

// CatalogServiceEvent mirrors business.catalog.updated.v1.
type CatalogServiceEvent struct {
	ServiceID       string `json:"service_id"`
	BusinessID      string `json:"business_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
	Active          bool   `json:"active"`
}

// ProfessionalEvent mirrors business.professional.updated.v1.
type ProfessionalEvent struct {
	ProfessionalID string `json:"professional_id"`
	BusinessID     string `json:"business_id"`
	Name           string `json:"name"`
	Active         bool   `json:"active"`
}

// ChargeEvent mirrors the payment.charge.*.v1 topics.
type ChargeEvent struct {
	PaymentID     string `json:"payment_id"`
	BusinessID    string `json:"business_id"`
	AppointmentID string `json:"appointment_id"`
	Provider      string `json:"provider"`
	AmountCents   int64  `json:"amount_cents"`
	Status        string `json:"status"`
}
