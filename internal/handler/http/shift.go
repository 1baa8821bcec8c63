package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ShiftHandler interface {
	ActiveSegment(w http.ResponseWriter, r *http.Request)
	Calendar(w http.ResponseWriter, r *http.Request)

	// Presets
	CreatePreset(w http.ResponseWriter, r *http.Request)
	ListPresets(w http.ResponseWriter, r *http.Request)
	GetPreset(w http.ResponseWriter, r *http.Request)
	DeletePreset(w http.ResponseWriter, r *http.Request)
	AssignPreset(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{shiftService: shiftService}
}

func (h *shiftHandlerImpl) ActiveSegment(w http.ResponseWriter, r *http.Request) {
	result, err := h.shiftService.GetActiveSegment(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *shiftHandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	req := shift.ShiftCalendarRequest{From: r.URL.Query().Get("from")}
	if d := r.URL.Query().Get("days"); d != "" {
		days, err := strconv.Atoi(d)
		if err != nil {
			response.BadRequest(w, "days must be a number", nil)
			return
		}
		req.Days = days
	}

	body, err := h.shiftService.ExportCalendar(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, "text/calendar; charset=utf-8", "shifts.ics", body)
}

func (h *shiftHandlerImpl) CreatePreset(w http.ResponseWriter, r *http.Request) {
	var req shift.CreateShiftPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.shiftService.CreatePreset(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift preset created", result)
}

func (h *shiftHandlerImpl) ListPresets(w http.ResponseWriter, r *http.Request) {
	var filter shift.ShiftPresetFilter
	filter.Name = optionalQuery(r, "name")
	filter.TeamID = optionalQuery(r, "team_id")
	filter.Page, filter.Limit = pagination(r)

	result, err := h.shiftService.ListPresets(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Presets, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

func (h *shiftHandlerImpl) GetPreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Preset ID is required", nil)
		return
	}

	result, err := h.shiftService.GetPreset(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *shiftHandlerImpl) DeletePreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Preset ID is required", nil)
		return
	}

	if err := h.shiftService.DeletePreset(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift preset deleted", nil)
}

func (h *shiftHandlerImpl) AssignPreset(w http.ResponseWriter, r *http.Request) {
	req := shift.AssignShiftPresetRequest{
		PresetID:   chi.URLParam(r, "id"),
		EmployeeID: chi.URLParam(r, "employeeID"),
	}

	if err := h.shiftService.AssignPreset(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift preset assigned", nil)
}
