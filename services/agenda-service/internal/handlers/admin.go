package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/navalha-app/navalha/services/agenda-service/internal/model"
	"github.com/navalha-app/navalha/services/agenda-service/internal/schedule"
	"github.com/navalha-app/navalha/services/agenda-service/internal/storage"
)

type businessHourItem struct {
	Weekday   int    `json:"weekday"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Closed    bool   `json:"closed"`
}

type putHoursRequest struct {
	BusinessID string             `json:"business_id"`
	Hours      []businessHourItem `json:"hours"`
}

// Hours reads or replaces the weekly opening hours. A weekday with no row
// means the shop is closed that day.
func (h *AgendaHandler) Hours(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listHours(w, r)
	case http.MethodPut:
		h.putHours(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AgendaHandler) listHours(w http.ResponseWriter, r *http.Request) {
	businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
	if businessID == "" {
		http.Error(w, "business_id required", http.StatusBadRequest)
		return
	}
	hours, err := h.repo.ListBusinessHours(r.Context(), businessID)
	if err != nil {
		http.Error(w, "failed to list hours", http.StatusInternalServerError)
		return
	}
	items := make([]businessHourItem, 0, len(hours))
	for _, bh := range hours {
		items = append(items, businessHourItem{
			Weekday:   bh.Weekday,
			OpenTime:  clockOnly(bh.OpenTime),
			CloseTime: clockOnly(bh.CloseTime),
			Closed:    bh.Closed,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AgendaHandler) putHours(w http.ResponseWriter, r *http.Request) {
	var req putHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	if req.BusinessID == "" || len(req.Hours) == 0 {
		http.Error(w, "business_id and hours required", http.StatusBadRequest)
		return
	}

	for _, item := range req.Hours {
		if item.Weekday < 0 || item.Weekday > 6 {
			http.Error(w, "weekday must be 0-6", http.StatusBadRequest)
			return
		}
		if !item.Closed {
			open, err := schedule.ParseClock(item.OpenTime)
			if err != nil {
				http.Error(w, "invalid open_time, expected HH:mm", http.StatusBadRequest)
				return
			}
			closeAt, err := schedule.ParseClockEnd(item.CloseTime)
			if err != nil {
				http.Error(w, "invalid close_time, expected HH:mm", http.StatusBadRequest)
				return
			}
			if open >= closeAt {
				http.Error(w, "open_time must be before close_time", http.StatusBadRequest)
				return
			}
		}
	}

	for _, item := range req.Hours {
		err := h.repo.UpsertBusinessHour(r.Context(), model.BusinessHour{
			BusinessID: req.BusinessID,
			Weekday:    item.Weekday,
			OpenTime:   item.OpenTime,
			CloseTime:  item.CloseTime,
			Closed:     item.Closed,
		})
		if err != nil {
			h.logger.Error("hours upsert failed", "err", err)
			http.Error(w, "failed to save hours", http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type availabilityItem struct {
	Weekday    int     `json:"weekday"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`
	Active     bool    `json:"active"`
}

type putAvailabilityRequest struct {
	BusinessID     string             `json:"business_id"`
	ProfessionalID string             `json:"professional_id"`
	Days           []availabilityItem `json:"days"`
}

func (h *AgendaHandler) Availability(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listAvailability(w, r)
	case http.MethodPut:
		h.putAvailability(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AgendaHandler) listAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))
	professionalID := strings.TrimSpace(q.Get("professional_id"))
	if businessID == "" || professionalID == "" {
		http.Error(w, "business_id and professional_id required", http.StatusBadRequest)
		return
	}
	days, err := h.repo.ListAvailability(r.Context(), businessID, professionalID)
	if err != nil {
		http.Error(w, "failed to list availability", http.StatusInternalServerError)
		return
	}
	items := make([]availabilityItem, 0, len(days))
	for _, a := range days {
		item := availabilityItem{
			Weekday:   a.Weekday,
			StartTime: clockOnly(a.StartTime),
			EndTime:   clockOnly(a.EndTime),
			Active:    a.Active,
		}
		if a.BreakStart != nil {
			bs := clockOnly(*a.BreakStart)
			item.BreakStart = &bs
		}
		if a.BreakEnd != nil {
			be := clockOnly(*a.BreakEnd)
			item.BreakEnd = &be
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AgendaHandler) putAvailability(w http.ResponseWriter, r *http.Request) {
	var req putAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.ProfessionalID = strings.TrimSpace(req.ProfessionalID)
	if req.BusinessID == "" || req.ProfessionalID == "" || len(req.Days) == 0 {
		http.Error(w, "business_id, professional_id and days required", http.StatusBadRequest)
		return
	}

	for _, item := range req.Days {
		if msg := validateAvailabilityDay(item); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
	}

	for _, item := range req.Days {
		err := h.repo.UpsertAvailability(r.Context(), model.ProfessionalAvailability{
			ProfessionalID: req.ProfessionalID,
			BusinessID:     req.BusinessID,
			Weekday:        item.Weekday,
			StartTime:      item.StartTime,
			EndTime:        item.EndTime,
			BreakStart:     item.BreakStart,
			BreakEnd:       item.BreakEnd,
			Active:         item.Active,
		})
		if err != nil {
			h.logger.Error("availability upsert failed", "err", err)
			http.Error(w, "failed to save availability", http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateAvailabilityDay returns an error message for the caller, or ""
// when the day is well formed. A break must fall inside the working window.
func validateAvailabilityDay(item availabilityItem) string {
	if item.Weekday < 0 || item.Weekday > 6 {
		return "weekday must be 0-6"
	}
	start, err := schedule.ParseClock(item.StartTime)
	if err != nil {
		return "invalid start_time, expected HH:mm"
	}
	end, err := schedule.ParseClockEnd(item.EndTime)
	if err != nil {
		return "invalid end_time, expected HH:mm"
	}
	if start >= end {
		return "start_time must be before end_time"
	}
	if (item.BreakStart == nil) != (item.BreakEnd == nil) {
		return "break_start and break_end must be set together"
	}
	if item.BreakStart != nil {
		bs, err := schedule.ParseClock(*item.BreakStart)
		if err != nil {
			return "invalid break_start, expected HH:mm"
		}
		be, err := schedule.ParseClockEnd(*item.BreakEnd)
		if err != nil {
			return "invalid break_end, expected HH:mm"
		}
		if bs >= be {
			return "break_start must be before break_end"
		}
		if bs < start || be > end {
			return "break must fall within start_time and end_time"
		}
	}
	return ""
}

type createBlockRequest struct {
	BusinessID     string `json:"business_id"`
	ProfessionalID string `json:"professional_id"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Reason         string `json:"reason"`
	BlockType      string `json:"block_type"`
}

type blockItem struct {
	BlockID        string `json:"block_id"`
	ProfessionalID string `json:"professional_id,omitempty"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Reason         string `json:"reason,omitempty"`
	BlockType      string `json:"block_type,omitempty"`
}

// Blocks manages time blocks. A block without professional_id closes the
// whole business for its window.
func (h *AgendaHandler) Blocks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBlocks(w, r)
	case http.MethodPost:
		h.createBlock(w, r)
	case http.MethodDelete:
		h.deleteBlock(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AgendaHandler) createBlock(w http.ResponseWriter, r *http.Request) {
	var req createBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	if req.BusinessID == "" {
		http.Error(w, "business_id required", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		http.Error(w, "invalid end_time", http.StatusBadRequest)
		return
	}
	if !end.After(start) {
		http.Error(w, "end_time must be after start_time", http.StatusBadRequest)
		return
	}

	block := &model.TimeBlock{
		BusinessID:     req.BusinessID,
		ProfessionalID: strings.TrimSpace(req.ProfessionalID),
		StartTime:      start,
		EndTime:        end,
		Reason:         strings.TrimSpace(req.Reason),
		BlockType:      strings.TrimSpace(req.BlockType),
	}
	id, err := h.repo.CreateTimeBlock(r.Context(), block)
	if err != nil {
		h.logger.Error("block insert failed", "err", err)
		http.Error(w, "failed to create block", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, blockItem{
		BlockID:        id,
		ProfessionalID: block.ProfessionalID,
		StartTime:      start.UTC().Format(time.RFC3339),
		EndTime:        end.UTC().Format(time.RFC3339),
		Reason:         block.Reason,
		BlockType:      block.BlockType,
	})
}

func (h *AgendaHandler) listBlocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))
	fromStr := strings.TrimSpace(q.Get("from"))
	toStr := strings.TrimSpace(q.Get("to"))
	if businessID == "" || fromStr == "" || toStr == "" {
		http.Error(w, "business_id, from and to are required", http.StatusBadRequest)
		return
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		http.Error(w, "invalid from", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		http.Error(w, "invalid to", http.StatusBadRequest)
		return
	}

	blocks, err := h.repo.ListTimeBlocks(r.Context(), businessID, from, to)
	if err != nil {
		http.Error(w, "failed to list blocks", http.StatusInternalServerError)
		return
	}
	items := make([]blockItem, 0, len(blocks))
	for _, b := range blocks {
		items = append(items, blockItem{
			BlockID:        b.ID,
			ProfessionalID: b.ProfessionalID,
			StartTime:      b.StartTime.UTC().Format(time.RFC3339),
			EndTime:        b.EndTime.UTC().Format(time.RFC3339),
			Reason:         b.Reason,
			BlockType:      b.BlockType,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AgendaHandler) deleteBlock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))
	blockID := strings.TrimSpace(q.Get("block_id"))
	if businessID == "" || blockID == "" {
		http.Error(w, "business_id and block_id required", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeleteTimeBlock(r.Context(), businessID, blockID); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "block not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete block", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clockOnly strips trailing seconds from stored time columns.
func clockOnly(s string) string {
	m, err := schedule.ParseClock(s)
	if err != nil {
		return s
	}
	return m.Clock()
}
