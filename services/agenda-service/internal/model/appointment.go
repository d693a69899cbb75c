package model

import "time"

// Appointment lifecycle states. Card and PIX bookings start as pending and
// move to confirmed when the charge settles; in-person bookings confirm
// immediately.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

const (
	PaymentMethodCard     = "card"
	PaymentMethodPix      = "pix"
	PaymentMethodInPerson = "in_person"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusAwaiting = "awaiting_payment"
	PaymentStatusPaid     = "paid"
	PaymentStatusExpired  = "expired"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

type Appointment struct {
	ID             string
	BusinessID     string
	ServiceID      string
	ProfessionalID string
	ClientName     string
	ClientPhone    string
	ClientEmail    string
	StartTime      time.Time
	EndTime        time.Time
	Status         string
	PaymentMethod  string
	PaymentStatus  string
	PriceCents     int64
	Notes          string
	CancelledAt    *time.Time
	CancelReason   string
	CreatedAt      time.Time
}

type TimeBlock struct {
	ID             string
	BusinessID     string
	ProfessionalID string // empty means the whole business
	StartTime      time.Time
	EndTime        time.Time
	Reason         string
	BlockType      string
	CreatedAt      time.Time
}

type BusinessHour struct {
	BusinessID string
	Weekday    int
	OpenTime   string
	CloseTime  string
	Closed     bool
}

type ProfessionalAvailability struct {
	ProfessionalID string
	BusinessID     string
	Weekday        int
	StartTime      string
	EndTime        string
	BreakStart     *string
	BreakEnd       *string
	Active         bool
}

// BusinessProfile is the locally cached projection of business-service
// profile events.
type BusinessProfile struct {
	BusinessID string
	Name       string
	Timezone   string
	SlotBuffer int
	UpdatedAt  time.Time
}

// CatalogService is the locally cached projection of business-service
// catalog events.
type CatalogService struct {
	ServiceID       string
	BusinessID      string
	Name            string
	DurationMinutes int
	PriceCents      int64
	Active          bool
	UpdatedAt       time.Time
}

// Professional is the locally cached projection of business-service
// professional events.
type Professional struct {
	ProfessionalID string
	BusinessID     string
	Name           string
	Active         bool
	UpdatedAt      time.Time
}

type RevenueRow struct {
	ProfessionalID string
	Completed      int64
	TotalCents     int64
}
