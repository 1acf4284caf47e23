package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	park "skypark/domain"
	"skypark/internal/service/admission"
	"skypark/internal/service/admission/application"
	"skypark/internal/service/admission/domain"
)

// AdmissionHandler 封装了入场/离场的 HTTP 处理器。
type AdmissionHandler struct {
	service *application.AdmissionService
	hub     *OccupancyHub
}

func NewAdmissionHandler(service *application.AdmissionService, hub *OccupancyHub) *AdmissionHandler {
	return &AdmissionHandler{service: service, hub: hub}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *AdmissionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /enter", h.enter)
	mux.HandleFunc("POST /exit", h.exit)
	mux.HandleFunc("GET /ws/occupancy", h.hub.ServeWS)
}

// entryRequest 是入场/离场请求体。
// credential_kind 为 "QR"（二维码）或 "TAG"（手环）。
type entryRequest struct {
	Attraction      string `json:"attraction"`
	CredentialKind  string `json:"credential_kind"`
	CredentialValue string `json:"credential_value"`
}

type visitView struct {
	ID             string     `json:"id"`
	VisitorID      string     `json:"visitor_id"`
	AttractionName string     `json:"attraction_name"`
	EntryAt        time.Time  `json:"entry_at"`
	ExitAt         *time.Time `json:"exit_at,omitempty"`
	Active         bool       `json:"active"`
	Points         int        `json:"points"`
	StrategyName   string     `json:"strategy_name,omitempty"`
}

func (h *AdmissionHandler) enter(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEntryRequest(w, r)
	if !ok {
		return
	}
	visit, err := h.service.Admit(r.Context(), req.Attraction, admission.CredentialKind(req.CredentialKind), req.CredentialValue)
	if err != nil {
		writeAdmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVisitView(visit))
}

func (h *AdmissionHandler) exit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEntryRequest(w, r)
	if !ok {
		return
	}
	visit, err := h.service.RegisterExit(r.Context(), req.Attraction, admission.CredentialKind(req.CredentialKind), req.CredentialValue)
	if err != nil {
		writeAdmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVisitView(visit))
}

func decodeEntryRequest(w http.ResponseWriter, r *http.Request) (entryRequest, bool) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	if req.Attraction == "" || req.CredentialValue == "" {
		http.Error(w, "attraction and credential_value are required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func toVisitView(v *park.Visit) visitView {
	return visitView{
		ID:             v.ID,
		VisitorID:      v.VisitorID,
		AttractionName: v.AttractionName,
		EntryAt:        v.EntryAt,
		ExitAt:         v.ExitAt,
		Active:         v.Active,
		Points:         v.Points,
		StrategyName:   v.StrategyName,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeAdmissionError 把准入领域错误映射到 HTTP 状态码。
func writeAdmissionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAttractionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCredentialFormat),
		errors.Is(err, domain.ErrInvalidEntryType):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrVisitAlreadyActiveHere),
		errors.Is(err, domain.ErrVisitorAlreadyElsewhere):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAttractionOutOfService),
		errors.Is(err, domain.ErrNoValidTicket),
		errors.Is(err, domain.ErrWrongAttractionForTicket),
		errors.Is(err, domain.ErrTicketNotValidForTimeWindow),
		errors.Is(err, domain.ErrTicketExpired),
		errors.Is(err, domain.ErrTicketNotValidForToday),
		errors.Is(err, domain.ErrAgeLimitNotMet),
		errors.Is(err, domain.ErrNoActiveVisit):
		status = http.StatusForbidden
	}
	http.Error(w, err.Error(), status)
}
