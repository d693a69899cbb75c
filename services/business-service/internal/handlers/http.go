package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/navalha-app/navalha/services/business-service/internal/outbox"
	"github.com/navalha-app/navalha/services/business-service/internal/storage"
)

const (
	defaultSlotBuffer = 30
	minSlotBuffer     = 5
)

type Handler struct {
	repo       *storage.Repository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
}

func New(repo *storage.Repository, outboxRepo *outbox.Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, outboxRepo: outboxRepo, logger: logger}
}

type profileResponse struct {
	BusinessID        string `json:"business_id"`
	Name              string `json:"name"`
	Timezone          string `json:"timezone"`
	SlotBufferMinutes int    `json:"slot_buffer_minutes"`
}

type updateProfileRequest struct {
	BusinessID        string `json:"business_id"`
	Name              string `json:"name"`
	Timezone          string `json:"timezone"`
	SlotBufferMinutes int    `json:"slot_buffer_minutes"`
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getProfile(w, r)
	case http.MethodPut:
		h.updateProfile(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
	if businessID == "" {
		http.Error(w, "business_id required", http.StatusBadRequest)
		return
	}
	p, err := h.repo.GetOrCreateProfile(r.Context(), businessID)
	if err != nil {
		h.logger.Error("profile load failed", "err", err)
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		BusinessID:        p.BusinessID,
		Name:              p.Name,
		Timezone:          p.Timezone,
		SlotBufferMinutes: p.SlotBufferMinutes,
	})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.Name = strings.TrimSpace(req.Name)
	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.BusinessID == "" || req.Name == "" || req.Timezone == "" {
		http.Error(w, "business_id, name and timezone required", http.StatusBadRequest)
		return
	}
	// The timezone drives all slot and day-boundary math downstream, so only
	// accept names the tz database actually knows.
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		http.Error(w, "unknown timezone", http.StatusBadRequest)
		return
	}
	if req.SlotBufferMinutes <= 0 {
		req.SlotBufferMinutes = defaultSlotBuffer
	}
	if req.SlotBufferMinutes < minSlotBuffer {
		req.SlotBufferMinutes = minSlotBuffer
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	profile := storage.BusinessProfile{
		BusinessID:        req.BusinessID,
		Name:              req.Name,
		Timezone:          req.Timezone,
		SlotBufferMinutes: req.SlotBufferMinutes,
	}
	if err := h.repo.UpdateProfile(ctx, tx, profile); err != nil {
		h.logger.Error("profile update failed", "err", err)
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}

	if err := h.emitProfileEvent(ctx, tx, profile); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		BusinessID:        profile.BusinessID,
		Name:              profile.Name,
		Timezone:          profile.Timezone,
		SlotBufferMinutes: profile.SlotBufferMinutes,
	})
}

type serviceItem struct {
	ServiceID       string `json:"service_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
	Description     string `json:"description,omitempty"`
	Active          bool   `json:"active"`
}

type upsertServiceRequest struct {
	BusinessID      string `json:"business_id"`
	ServiceID       string `json:"service_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
	Description     string `json:"description"`
	Active          *bool  `json:"active"`
}

func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listServices(w, r)
	case http.MethodPost:
		h.saveService(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
	if businessID == "" {
		http.Error(w, "business_id required", http.StatusBadRequest)
		return
	}
	services, err := h.repo.ListServices(r.Context(), businessID, 0)
	if err != nil {
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	items := make([]serviceItem, 0, len(services))
	for _, s := range services {
		items = append(items, serviceItem{
			ServiceID:       s.ID,
			Name:            s.Name,
			DurationMinutes: s.DurationMins,
			PriceCents:      s.PriceCents,
			Description:     s.Description,
			Active:          s.Active,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// saveService creates or updates a catalog entry. Either way the change is
// published so agenda's local cache follows.
func (h *Handler) saveService(w http.ResponseWriter, r *http.Request) {
	var req upsertServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.Name = strings.TrimSpace(req.Name)
	if req.BusinessID == "" || req.Name == "" {
		http.Error(w, "business_id and name required", http.StatusBadRequest)
		return
	}
	if req.DurationMinutes <= 0 || req.DurationMinutes > 8*60 {
		http.Error(w, "duration_minutes must be between 1 and 480", http.StatusBadRequest)
		return
	}
	if req.PriceCents < 0 {
		http.Error(w, "price_cents must not be negative", http.StatusBadRequest)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	svc := storage.CatalogService{
		ID:           req.ServiceID,
		BusinessID:   req.BusinessID,
		Name:         req.Name,
		DurationMins: req.DurationMinutes,
		PriceCents:   req.PriceCents,
		Description:  strings.TrimSpace(req.Description),
		Active:       active,
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status := http.StatusOK
	if svc.ID == "" {
		id, err := h.repo.CreateService(ctx, tx, svc)
		if err != nil {
			h.logger.Error("service insert failed", "err", err)
			http.Error(w, "failed to create service", http.StatusInternalServerError)
			return
		}
		svc.ID = id
		status = http.StatusCreated
	} else {
		if err := h.repo.UpdateService(ctx, tx, svc); err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "service not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to update service", http.StatusInternalServerError)
			return
		}
	}

	if err := h.emitCatalogEvent(ctx, tx, svc); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, status, serviceItem{
		ServiceID:       svc.ID,
		Name:            svc.Name,
		DurationMinutes: svc.DurationMins,
		PriceCents:      svc.PriceCents,
		Description:     svc.Description,
		Active:          svc.Active,
	})
}

type professionalItem struct {
	ProfessionalID string `json:"professional_id"`
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	Active         bool   `json:"active"`
}

type createProfessionalRequest struct {
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
}

type setProfessionalActiveRequest struct {
	BusinessID     string `json:"business_id"`
	ProfessionalID string `json:"professional_id"`
	Active         bool   `json:"active"`
}

func (h *Handler) Professionals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProfessionals(w, r)
	case http.MethodPost:
		h.createProfessional(w, r)
	case http.MethodPatch:
		h.setProfessionalActive(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listProfessionals(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
	if businessID == "" {
		http.Error(w, "business_id required", http.StatusBadRequest)
		return
	}
	pros, err := h.repo.ListProfessionals(r.Context(), businessID, 0)
	if err != nil {
		http.Error(w, "failed to list professionals", http.StatusInternalServerError)
		return
	}
	items := make([]professionalItem, 0, len(pros))
	for _, p := range pros {
		items = append(items, professionalItem{
			ProfessionalID: p.ID,
			Name:           p.Name,
			Phone:          p.Phone,
			Active:         p.Active,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) createProfessional(w http.ResponseWriter, r *http.Request) {
	var req createProfessionalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.Name = strings.TrimSpace(req.Name)
	if req.BusinessID == "" || req.Name == "" {
		http.Error(w, "business_id and name required", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := h.repo.CreateProfessional(ctx, tx, req.BusinessID, req.Name, strings.TrimSpace(req.Phone))
	if err != nil {
		h.logger.Error("professional insert failed", "err", err)
		http.Error(w, "failed to create professional", http.StatusInternalServerError)
		return
	}
	if err := h.emitProfessionalEvent(ctx, tx, storage.Professional{
		ID:         id,
		BusinessID: req.BusinessID,
		Name:       req.Name,
		Active:     true,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, professionalItem{
		ProfessionalID: id,
		Name:           req.Name,
		Phone:          strings.TrimSpace(req.Phone),
		Active:         true,
	})
}

func (h *Handler) setProfessionalActive(w http.ResponseWriter, r *http.Request) {
	var req setProfessionalActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.ProfessionalID = strings.TrimSpace(req.ProfessionalID)
	if req.BusinessID == "" || req.ProfessionalID == "" {
		http.Error(w, "business_id and professional_id required", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pro, err := h.repo.SetProfessionalActive(ctx, tx, req.BusinessID, req.ProfessionalID, req.Active)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "professional not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update professional", http.StatusInternalServerError)
		return
	}
	if err := h.emitProfessionalEvent(ctx, tx, pro); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type clientItem struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type createClientRequest struct {
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Notes      string `json:"notes"`
}

func (h *Handler) Clients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.searchClients(w, r)
	case http.MethodPost:
		h.createClient(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) searchClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))
	if businessID == "" {
		http.Error(w, "business_id required", http.StatusBadRequest)
		return
	}
	clients, err := h.repo.SearchClients(r.Context(), businessID, strings.TrimSpace(q.Get("q")), 0)
	if err != nil {
		http.Error(w, "failed to search clients", http.StatusInternalServerError)
		return
	}
	items := make([]clientItem, 0, len(clients))
	for _, c := range clients {
		items = append(items, clientItem{
			ClientID: c.ID,
			Name:     c.Name,
			Phone:    c.Phone,
			Email:    c.Email,
			Notes:    c.Notes,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.Name = strings.TrimSpace(req.Name)
	if req.BusinessID == "" || req.Name == "" {
		http.Error(w, "business_id and name required", http.StatusBadRequest)
		return
	}
	id, err := h.repo.CreateClient(r.Context(), storage.Client{
		BusinessID: req.BusinessID,
		Name:       req.Name,
		Phone:      strings.TrimSpace(req.Phone),
		Email:      strings.TrimSpace(req.Email),
		Notes:      strings.TrimSpace(req.Notes),
	})
	if err != nil {
		h.logger.Error("client insert failed", "err", err)
		http.Error(w, "failed to create client", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, clientItem{
		ClientID: id,
		Name:     req.Name,
		Phone:    strings.TrimSpace(req.Phone),
		Email:    strings.TrimSpace(req.Email),
		Notes:    strings.TrimSpace(req.Notes),
	})
}

func (h *Handler) emitProfileEvent(ctx context.Context, tx pgx.Tx, p storage.BusinessProfile) error {
	payload, err := json.Marshal(outbox.ProfileUpdated{
		BusinessID:        p.BusinessID,
		Name:              p.Name,
		Timezone:          p.Timezone,
		SlotBufferMinutes: p.SlotBufferMinutes,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "business",
		AggregateID:   p.BusinessID,
		EventType:     outbox.TopicProfileUpdated,
		Payload:       payload,
	})
}

func (h *Handler) emitCatalogEvent(ctx context.Context, tx pgx.Tx, s storage.CatalogService) error {
	payload, err := json.Marshal(outbox.CatalogUpdated{
		ServiceID:       s.ID,
		BusinessID:      s.BusinessID,
		Name:            s.Name,
		DurationMinutes: s.DurationMins,
		PriceCents:      s.PriceCents,
		Active:          s.Active,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "service",
		AggregateID:   s.ID,
		EventType:     outbox.TopicCatalogUpdated,
		Payload:       payload,
	})
}

func (h *Handler) emitProfessionalEvent(ctx context.Context, tx pgx.Tx, p storage.Professional) error {
	payload, err := json.Marshal(outbox.ProfessionalUpdated{
		ProfessionalID: p.ID,
		BusinessID:     p.BusinessID,
		Name:           p.Name,
		Active:         p.Active,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "professional",
		AggregateID:   p.ID,
		EventType:     outbox.TopicProfessionalUpdated,
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
