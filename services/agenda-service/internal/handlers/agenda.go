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
	"github.com/navalha-app/navalha/services/agenda-service/internal/booking"
	"github.com/navalha-app/navalha/services/agenda-service/internal/model"
	"github.com/navalha-app/navalha/services/agenda-service/internal/outbox"
	"github.com/navalha-app/navalha/services/agenda-service/internal/schedule"
	"github.com/navalha-app/navalha/services/agenda-service/internal/storage"
)

var errBadDate = errors.New("invalid date")

type AgendaHandler struct {
	repo          *storage.AgendaRepository
	outboxRepo    *outbox.Repository
	logger        *slog.Logger
	defaultTZ     string
	defaultBuffer int
}

func NewAgendaHandler(repo *storage.AgendaRepository, outboxRepo *outbox.Repository, logger *slog.Logger, defaultTZ string, defaultBuffer int) *AgendaHandler {
	if defaultTZ == "" {
		defaultTZ = "America/Sao_Paulo"
	}
	if defaultBuffer <= 0 {
		defaultBuffer = 30
	}
	return &AgendaHandler{
		repo:          repo,
		outboxRepo:    outboxRepo,
		logger:        logger,
		defaultTZ:     defaultTZ,
		defaultBuffer: defaultBuffer,
	}
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type professionalSlots struct {
	ProfessionalID   string     `json:"professional_id"`
	ProfessionalName string     `json:"professional_name"`
	Slots            []slotItem `json:"slots"`
}

// freeSlots walks the day's generated slots and keeps the ones the given
// professional could actually take. Every slot runs through the same
// validation as a booking attempt, so the client never sees a slot that book
// would reject.
func freeSlots(d *dayContext, professionalID string, duration time.Duration) []slotItem {
	items := []slotItem{}
	if !d.open {
		return items
	}
	snap := d.snapshot()
	for _, m := range schedule.Slots(d.hours, d.buffer) {
		start := m.At(d.day, d.loc)
		req := booking.Request{ProfessionalID: professionalID, Start: start, Duration: duration}
		if booking.Validate(req, snap) != nil {
			continue
		}
		items = append(items, slotItem{
			StartTime: m.Clock(),
			EndTime:   schedule.MinuteOf(start.Add(duration)).Clock(),
		})
	}
	return items
}

// Slots lists bookable start times for one service on one day. With a
// professional_id the response is that professional's free starts; without
// one it covers every active professional, grouped per professional.
func (h *AgendaHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))
	professionalID := strings.TrimSpace(q.Get("professional_id"))
	serviceID := strings.TrimSpace(q.Get("service_id"))
	dateStr := strings.TrimSpace(q.Get("date"))
	if businessID == "" || serviceID == "" || dateStr == "" {
		http.Error(w, "business_id, service_id and date are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	svc, found, err := h.repo.GetCatalogService(ctx, businessID, serviceID)
	if err != nil {
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}
	if !found || !svc.Active || svc.DurationMinutes <= 0 {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}
	duration := time.Duration(svc.DurationMinutes) * time.Minute

	if professionalID != "" {
		d, err := h.loadDayContext(ctx, businessID, professionalID, dateStr, "")
		if err != nil {
			h.slotLoadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, freeSlots(d, professionalID, duration))
		return
	}

	d, err := h.loadBusinessDay(ctx, businessID, dateStr)
	if err != nil {
		h.slotLoadError(w, err)
		return
	}
	pros, err := h.repo.ListActiveProfessionals(ctx, businessID)
	if err != nil {
		h.slotLoadError(w, err)
		return
	}
	roster, err := h.loadRoster(ctx, businessID, d.day.Weekday())
	if err != nil {
		h.slotLoadError(w, err)
		return
	}

	out := []professionalSlots{}
	for _, pro := range pros {
		d.rule = roster.Rule(pro.ProfessionalID, d.day.Weekday())
		if err := h.loadExisting(ctx, d, businessID, pro.ProfessionalID, ""); err != nil {
			h.slotLoadError(w, err)
			return
		}
		out = append(out, professionalSlots{
			ProfessionalID:   pro.ProfessionalID,
			ProfessionalName: pro.Name,
			Slots:            freeSlots(d, pro.ProfessionalID, duration),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AgendaHandler) slotLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBadDate) {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	h.logger.Error("slot context load failed", "err", err)
	http.Error(w, "failed to load schedule", http.StatusInternalServerError)
}

type bookRequest struct {
	BusinessID     string `json:"business_id"`
	ServiceID      string `json:"service_id"`
	ProfessionalID string `json:"professional_id"`
	ClientName     string `json:"client_name"`
	ClientPhone    string `json:"client_phone"`
	ClientEmail    string `json:"client_email"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	PaymentMethod  string `json:"payment_method"`
	Notes          string `json:"notes"`
}

type bookResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	PriceCents    int64  `json:"price_cents"`
}

type rejectionResponse struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (h *AgendaHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.ProfessionalID = strings.TrimSpace(req.ProfessionalID)
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.BusinessID == "" || req.ServiceID == "" || req.ProfessionalID == "" || req.ClientName == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PaymentMethodInPerson
	}
	switch req.PaymentMethod {
	case model.PaymentMethodCard, model.PaymentMethodPix, model.PaymentMethodInPerson:
	default:
		http.Error(w, "invalid payment_method", http.StatusBadRequest)
		return
	}

	startMinute, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time, expected HH:mm", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	svc, found, err := h.repo.GetCatalogService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}
	if !found || !svc.Active || svc.DurationMinutes <= 0 {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}

	d, err := h.loadDayContext(ctx, req.BusinessID, req.ProfessionalID, req.Date, "")
	if err != nil {
		if errors.Is(err, errBadDate) {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		h.logger.Error("booking context load failed", "err", err)
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}

	start := startMinute.At(d.day, d.loc)
	duration := time.Duration(svc.DurationMinutes) * time.Minute
	candidate := booking.Request{ProfessionalID: req.ProfessionalID, Start: start, Duration: duration}
	if rej := booking.Validate(candidate, d.snapshot()); rej != nil {
		writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{Reason: rej.Reason, Message: rej.Message})
		return
	}

	status := model.StatusConfirmed
	paymentStatus := model.PaymentStatusPending
	if req.PaymentMethod != model.PaymentMethodInPerson {
		status = model.StatusPending
		paymentStatus = model.PaymentStatusAwaiting
	}

	appt := &model.Appointment{
		BusinessID:     req.BusinessID,
		ServiceID:      req.ServiceID,
		ProfessionalID: req.ProfessionalID,
		ClientName:     req.ClientName,
		ClientPhone:    strings.TrimSpace(req.ClientPhone),
		ClientEmail:    strings.TrimSpace(req.ClientEmail),
		StartTime:      start,
		EndTime:        start.Add(duration),
		Status:         status,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  paymentStatus,
		PriceCents:     svc.PriceCents,
		Notes:          strings.TrimSpace(req.Notes),
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := h.repo.Create(ctx, tx, appt)
	if err != nil {
		if storage.IsConflict(err) {
			// Another session won the slot between snapshot and insert.
			writeJSON(w, http.StatusConflict, rejectionResponse{Reason: booking.ReasonSlotOccupied, Message: "horário já ocupado"})
			return
		}
		h.logger.Error("appointment insert failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	if err := h.insertAppointmentEvent(ctx, tx, outbox.TopicAppointmentBooked, id, appt, time.Time{}, ""); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, bookResponse{
		AppointmentID: id,
		Status:        appt.Status,
		PaymentStatus: appt.PaymentStatus,
		StartTime:     appt.StartTime.Format(time.RFC3339),
		EndTime:       appt.EndTime.Format(time.RFC3339),
		PriceCents:    appt.PriceCents,
	})
}

type rescheduleRequest struct {
	BusinessID     string `json:"business_id"`
	AppointmentID  string `json:"appointment_id"`
	ProfessionalID string `json:"professional_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
}

func (h *AgendaHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.BusinessID == "" || req.AppointmentID == "" {
		http.Error(w, "business_id and appointment_id required", http.StatusBadRequest)
		return
	}
	startMinute, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time, expected HH:mm", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetForUpdate(ctx, tx, req.BusinessID, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if appt.Status != model.StatusPending && appt.Status != model.StatusConfirmed {
		http.Error(w, "appointment cannot be rescheduled", http.StatusConflict)
		return
	}

	professionalID := targetProfessional(req.ProfessionalID, appt.ProfessionalID)

	// The moved appointment must not collide with itself at its old slot.
	d, err := h.loadDayContext(ctx, req.BusinessID, professionalID, req.Date, appt.ID)
	if err != nil {
		if errors.Is(err, errBadDate) {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		h.logger.Error("reschedule context load failed", "err", err)
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}

	start := startMinute.At(d.day, d.loc)
	duration := appt.EndTime.Sub(appt.StartTime)
	candidate := booking.Request{ProfessionalID: professionalID, Start: start, Duration: duration}
	if rej := booking.Validate(candidate, d.snapshot()); rej != nil {
		writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{Reason: rej.Reason, Message: rej.Message})
		return
	}

	previousStart := appt.StartTime
	if err := h.repo.Reschedule(ctx, tx, req.BusinessID, appt.ID, professionalID, start, start.Add(duration)); err != nil {
		if storage.IsConflict(err) {
			writeJSON(w, http.StatusConflict, rejectionResponse{Reason: booking.ReasonSlotOccupied, Message: "horário já ocupado"})
			return
		}
		http.Error(w, "failed to reschedule", http.StatusInternalServerError)
		return
	}
	appt.ProfessionalID = professionalID
	appt.StartTime = start
	appt.EndTime = start.Add(duration)

	if err := h.insertAppointmentEvent(ctx, tx, outbox.TopicAppointmentRescheduled, appt.ID, &appt, previousStart, ""); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, bookResponse{
		AppointmentID: appt.ID,
		Status:        appt.Status,
		PaymentStatus: appt.PaymentStatus,
		StartTime:     appt.StartTime.Format(time.RFC3339),
		EndTime:       appt.EndTime.Format(time.RFC3339),
		PriceCents:    appt.PriceCents,
	})
}

type transitionRequest struct {
	BusinessID    string `json:"business_id"`
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type transitionResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
}

func (h *AgendaHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.StatusCancelled)
}

func (h *AgendaHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.StatusCompleted)
}

func (h *AgendaHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.StatusNoShow)
}

func (h *AgendaHandler) transition(w http.ResponseWriter, r *http.Request, target string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.BusinessID == "" || req.AppointmentID == "" {
		http.Error(w, "business_id and appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetForUpdate(ctx, tx, req.BusinessID, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	// Repeating the same transition is a no-op, not an error.
	if appt.Status == target {
		resp := transitionResponse{AppointmentID: appt.ID, Status: appt.Status}
		if appt.CancelledAt != nil {
			resp.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if !transitionAllowed(appt.Status, target) {
		http.Error(w, "invalid status transition", http.StatusConflict)
		return
	}

	resp := transitionResponse{AppointmentID: appt.ID, Status: target}
	if target == model.StatusCancelled {
		cancelledAt, err := h.repo.Cancel(ctx, tx, req.BusinessID, appt.ID, req.Reason)
		if err != nil {
			http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
			return
		}
		resp.CancelledAt = cancelledAt.UTC().Format(time.RFC3339)
		appt.Status = model.StatusCancelled
		if err := h.insertAppointmentEvent(ctx, tx, outbox.TopicAppointmentCancelled, appt.ID, &appt, time.Time{}, req.Reason); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
	} else {
		if err := h.repo.SetStatus(ctx, tx, req.BusinessID, appt.ID, target); err != nil {
			http.Error(w, "failed to update appointment", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// targetProfessional picks the column a reschedule lands on. Drag-and-drop
// can move the appointment to another professional; an empty request keeps
// the current one.
func targetProfessional(requested, current string) string {
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested
	}
	return current
}

// transitionAllowed encodes the appointment lifecycle. Completed is terminal;
// cancelled and no_show free the slot and stay where they are.
func transitionAllowed(from, to string) bool {
	switch to {
	case model.StatusCancelled, model.StatusCompleted, model.StatusNoShow:
		return from == model.StatusPending || from == model.StatusConfirmed
	default:
		return false
	}
}

type appointmentItem struct {
	AppointmentID  string `json:"appointment_id"`
	ServiceID      string `json:"service_id"`
	ProfessionalID string `json:"professional_id"`
	ClientName     string `json:"client_name"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Status         string `json:"status"`
	PaymentMethod  string `json:"payment_method"`
	PaymentStatus  string `json:"payment_status"`
	PriceCents     int64  `json:"price_cents"`
	CancelledAt    string `json:"cancelled_at,omitempty"`
}

// List returns the business's appointments for one local day, cancelled ones
// included so the agenda view can render them struck through.
func (h *AgendaHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))
	dateStr := strings.TrimSpace(q.Get("date"))
	if businessID == "" || dateStr == "" {
		http.Error(w, "business_id and date are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	loc, _, err := h.resolveLocation(ctx, businessID)
	if err != nil {
		http.Error(w, "failed to load business", http.StatusInternalServerError)
		return
	}
	day, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	appts, err := h.repo.ListByBusiness(ctx, businessID, day, day.AddDate(0, 0, 1), 0)
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		item := appointmentItem{
			AppointmentID:  a.ID,
			ServiceID:      a.ServiceID,
			ProfessionalID: a.ProfessionalID,
			ClientName:     a.ClientName,
			StartTime:      a.StartTime.In(loc).Format(time.RFC3339),
			EndTime:        a.EndTime.In(loc).Format(time.RFC3339),
			Status:         a.Status,
			PaymentMethod:  a.PaymentMethod,
			PaymentStatus:  a.PaymentStatus,
			PriceCents:     a.PriceCents,
		}
		if a.CancelledAt != nil {
			item.CancelledAt = a.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

type revenueResponse struct {
	From          string        `json:"from"`
	To            string        `json:"to"`
	TotalCents    int64         `json:"total_cents"`
	Completed     int64         `json:"completed"`
	Professionals []revenueItem `json:"professionals"`
}

type revenueItem struct {
	ProfessionalID string `json:"professional_id"`
	Completed      int64  `json:"completed"`
	TotalCents     int64  `json:"total_cents"`
}

// Revenue sums completed appointments per professional over a local date
// range, end date inclusive.
func (h *AgendaHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))
	fromStr := strings.TrimSpace(q.Get("from"))
	toStr := strings.TrimSpace(q.Get("to"))
	if businessID == "" || fromStr == "" || toStr == "" {
		http.Error(w, "business_id, from and to are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	loc, _, err := h.resolveLocation(ctx, businessID)
	if err != nil {
		http.Error(w, "failed to load business", http.StatusInternalServerError)
		return
	}
	from, err := time.ParseInLocation("2006-01-02", fromStr, loc)
	if err != nil {
		http.Error(w, "invalid from date", http.StatusBadRequest)
		return
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, loc)
	if err != nil {
		http.Error(w, "invalid to date", http.StatusBadRequest)
		return
	}
	endExclusive := to.AddDate(0, 0, 1)
	if !endExclusive.After(from) {
		http.Error(w, "to must not be before from", http.StatusBadRequest)
		return
	}

	rows, err := h.repo.RevenueSummary(ctx, businessID, from, endExclusive)
	if err != nil {
		http.Error(w, "failed to build summary", http.StatusInternalServerError)
		return
	}

	resp := revenueResponse{From: fromStr, To: toStr, Professionals: []revenueItem{}}
	for _, row := range rows {
		resp.TotalCents += row.TotalCents
		resp.Completed += row.Completed
		resp.Professionals = append(resp.Professionals, revenueItem{
			ProfessionalID: row.ProfessionalID,
			Completed:      row.Completed,
			TotalCents:     row.TotalCents,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AgendaHandler) insertAppointmentEvent(ctx context.Context, tx pgx.Tx, eventType, id string, appt *model.Appointment, previousStart time.Time, cancelReason string) error {
	var prev *time.Time
	if !previousStart.IsZero() {
		utc := previousStart.UTC()
		prev = &utc
	}
	payload, err := json.Marshal(outbox.AppointmentEvent{
		AppointmentID:  id,
		BusinessID:     appt.BusinessID,
		ServiceID:      appt.ServiceID,
		ProfessionalID: appt.ProfessionalID,
		ClientName:     appt.ClientName,
		ClientPhone:    appt.ClientPhone,
		StartTime:      appt.StartTime.UTC(),
		EndTime:        appt.EndTime.UTC(),
		Status:         appt.Status,
		PaymentMethod:  appt.PaymentMethod,
		PriceCents:     appt.PriceCents,
		PreviousStart:  prev,
		CancelReason:   cancelReason,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     eventType,
		Payload:       payload,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
