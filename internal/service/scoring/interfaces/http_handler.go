package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"skypark/internal/service/scoring/application"
	"skypark/internal/service/scoring/domain"
)

// StrategyHandler 封装了策略管理的 HTTP 处理器。
// 只做请求/响应整形，规则全部在应用层。
type StrategyHandler struct {
	service *application.StrategyService
}

func NewStrategyHandler(service *application.StrategyService) *StrategyHandler {
	return &StrategyHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *StrategyHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /strategies", h.create)
	mux.HandleFunc("GET /strategies", h.list)
	mux.HandleFunc("POST /strategies/activate", h.activate)
	mux.HandleFunc("POST /strategies/deactivate", h.deactivate)
	mux.HandleFunc("POST /strategies/update", h.update)
	mux.HandleFunc("DELETE /strategies", h.delete)
	mux.HandleFunc("GET /strategy-types", h.listTypes)
	mux.HandleFunc("GET /extensions", h.listExtensions)
}

func (h *StrategyHandler) create(w http.ResponseWriter, r *http.Request) {
	var req application.CreateStrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	strategy, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toView(strategy))
}

func (h *StrategyHandler) list(w http.ResponseWriter, r *http.Request) {
	strategies, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]application.StrategyView, 0, len(strategies))
	for _, s := range strategies {
		views = append(views, toView(s))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *StrategyHandler) activate(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if err := h.service.Activate(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StrategyHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StrategyHandler) update(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	var req application.UpdateStrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	strategy, err := h.service.Update(r.Context(), name, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(strategy))
}

func (h *StrategyHandler) delete(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if err := h.service.Delete(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StrategyHandler) listTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListAvailableTypes(r.Context()))
}

func (h *StrategyHandler) listExtensions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListAvailableTypes(r.Context()).Extensions)
}

func toView(s *domain.ScoringStrategy) application.StrategyView {
	return application.StrategyView{
		Name:               s.Name,
		Description:        s.Description,
		Active:             s.Active,
		AlgorithmKind:      string(s.AlgorithmKind),
		PluginID:           s.PluginID,
		RawConfig:          s.RawConfig,
		ExtensionAvailable: s.ExtensionAvailable,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError 把领域错误映射到 HTTP 状态码。
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrStrategyNotFound),
		errors.Is(err, domain.ErrExtensionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrStrategyNameTaken),
		errors.Is(err, domain.ErrAnotherStrategyActive),
		errors.Is(err, domain.ErrCannotDeleteActive),
		errors.Is(err, domain.ErrNoActiveStrategy):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidStrategyDefinition),
		errors.Is(err, domain.ErrConfigurationMismatch),
		errors.Is(err, domain.ErrUnsupportedConfigType),
		errors.Is(err, domain.ErrExtensionConfigInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrExtensionUnavailable):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}
