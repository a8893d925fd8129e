package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"evshare/internal/payments/service"
	httputil "evshare/pkg/http"
	"evshare/pkg/logger"
	"evshare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

type splitRequest struct {
	GroupID     string     `json:"group_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TotalAmount float64    `json:"total_amount"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (h *PaymentHandler) CreateCostShare(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var share model.CostShare
	if err := json.NewDecoder(r.Body).Decode(&share); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateCostShare", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateCostShare(r.Context(), &share); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateCostShare", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, share); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateCostShare", "operation", "WriteCreated", "error", err)
	}
}

func (h *PaymentHandler) SplitCostShare(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SplitCostShare", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	share, err := h.service.SplitByOwnership(r.Context(), req.GroupID, req.Title, req.Description, req.TotalAmount, req.DueDate)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SplitCostShare", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, share); err != nil {
		h.log.Error("failed to write created response", "handler", "SplitCostShare", "operation", "WriteCreated", "error", err)
	}
}

func (h *PaymentHandler) GetCostShare(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	share, err := h.service.GetCostShare(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetCostShare", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, share); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCostShare", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) ListCostShares(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCostShares", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	shares, total, err := h.service.ListCostSharesByGroup(r.Context(), r.URL.Query().Get("group_id"), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCostShares", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, shares, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListCostShares", "operation", "WritePaginated", "error", err)
	}
}

func (h *PaymentHandler) UpdateCostShare(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.CostShareUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateCostShare", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	share, err := h.service.UpdateCostShare(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateCostShare", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, share); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateCostShare", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) DeleteCostShare(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteCostShare(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteCostShare", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PaymentHandler) MarkDetailPaid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	share, err := h.service.MarkDetailPaid(r.Context(), ps.ByName("id"), ps.ByName("detailId"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MarkDetailPaid", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, share); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkDetailPaid", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) CreateTransaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var txn model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateTransaction", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateTransaction(r.Context(), &txn); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateTransaction", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, txn); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateTransaction", "operation", "WriteCreated", "error", err)
	}
}

func (h *PaymentHandler) ListTransactions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListTransactions", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	txns, total, err := h.service.ListTransactions(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListTransactions", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, txns, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListTransactions", "operation", "WritePaginated", "error", err)
	}
}

func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload model.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Webhook", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.HandleWebhook(r.Context(), &payload); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Webhook", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"reference": payload.Reference, "status": "resolved"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Webhook", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/cost-shares", h.CreateCostShare)
	router.POST("/api/v1/cost-shares/split", h.SplitCostShare)
	router.GET("/api/v1/cost-shares", h.ListCostShares)
	router.GET("/api/v1/cost-shares/:id", h.GetCostShare)
	router.PUT("/api/v1/cost-shares/:id", h.UpdateCostShare)
	router.DELETE("/api/v1/cost-shares/:id", h.DeleteCostShare)
	router.PATCH("/api/v1/cost-shares/:id/details/:detailId/paid", h.MarkDetailPaid)

	router.POST("/api/v1/transactions", h.CreateTransaction)
	router.GET("/api/v1/transactions", h.ListTransactions)

	router.POST("/api/v1/payments/webhook", h.Webhook)
}
