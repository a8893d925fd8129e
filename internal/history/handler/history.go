package handler

import (
	"encoding/json"
	"net/http"

	"evshare/internal/history/repository"
	"evshare/internal/history/service"
	httputil "evshare/pkg/http"
	"evshare/pkg/logger"
	"evshare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type HistoryHandler struct {
	service service.HistoryService
	log     *logger.Logger
}

func NewHistoryHandler(service service.HistoryService, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		log:     log,
	}
}

func (h *HistoryHandler) CreateUsage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var record model.UsageRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateUsage", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateUsageRecord(r.Context(), &record); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateUsage", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, record); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateUsage", "operation", "WriteCreated", "error", err)
	}
}

func (h *HistoryHandler) GetUsage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	record, err := h.service.GetUsageRecord(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetUsage", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, record); err != nil {
		h.log.Error("failed to write success response", "handler", "GetUsage", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HistoryHandler) ListUsage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, limit, offset, err := h.extractFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListUsage", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	records, total, err := h.service.ListUsageRecords(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListUsage", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, records, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListUsage", "operation", "WritePaginated", "error", err)
	}
}

func (h *HistoryHandler) DeleteUsage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteUsageRecord(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteUsage", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *HistoryHandler) CreateCost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var record model.CostRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateCost", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateCostRecord(r.Context(), &record); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateCost", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, record); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateCost", "operation", "WriteCreated", "error", err)
	}
}

func (h *HistoryHandler) GetCost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	record, err := h.service.GetCostRecord(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetCost", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, record); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCost", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HistoryHandler) ListCosts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, limit, offset, err := h.extractFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCosts", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	records, total, err := h.service.ListCostRecords(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCosts", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, records, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListCosts", "operation", "WritePaginated", "error", err)
	}
}

func (h *HistoryHandler) DeleteCost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteCostRecord(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteCost", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *HistoryHandler) UsageStatistics(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, end, err := httputil.ExtractTimeRange(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UsageStatistics", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	stats, err := h.service.UsageStatistics(r.Context(), ps.ByName("vehicleId"), start, end)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UsageStatistics", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "UsageStatistics", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HistoryHandler) CostStatistics(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, end, err := httputil.ExtractTimeRange(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CostStatistics", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	stats, err := h.service.CostStatistics(r.Context(), ps.ByName("vehicleId"), start, end)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CostStatistics", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "CostStatistics", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HistoryHandler) extractFilter(r *http.Request) (repository.RecordFilter, int, int64, error) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		return repository.RecordFilter{}, 0, 0, err
	}

	start, end, err := httputil.ExtractTimeRange(r)
	if err != nil {
		return repository.RecordFilter{}, 0, 0, err
	}

	query := r.URL.Query()
	filter := repository.RecordFilter{
		VehicleID: query.Get("vehicle_id"),
		CoOwnerID: query.Get("co_owner_id"),
		StartTime: start,
		EndTime:   end,
	}

	return filter, limit, offset, nil
}

func (h *HistoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/history/usage", h.CreateUsage)
	router.GET("/api/v1/history/usage", h.ListUsage)
	router.GET("/api/v1/history/usage/:id", h.GetUsage)
	router.DELETE("/api/v1/history/usage/:id", h.DeleteUsage)

	router.POST("/api/v1/history/costs", h.CreateCost)
	router.GET("/api/v1/history/costs", h.ListCosts)
	router.GET("/api/v1/history/costs/:id", h.GetCost)
	router.DELETE("/api/v1/history/costs/:id", h.DeleteCost)

	router.GET("/api/v1/analytics/usage/:vehicleId", h.UsageStatistics)
	router.GET("/api/v1/analytics/costs/:vehicleId", h.CostStatistics)
}
