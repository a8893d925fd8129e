package handler

import (
	"encoding/json"
	"net/http"

	"evshare/internal/groups/service"
	httputil "evshare/pkg/http"
	"evshare/pkg/logger"
	"evshare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type GroupHandler struct {
	service service.GroupService
	log     *logger.Logger
}

func NewGroupHandler(service service.GroupService, log *logger.Logger) *GroupHandler {
	return &GroupHandler{
		service: service,
		log:     log,
	}
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var group model.Group
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateGroup", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateGroup(r.Context(), &group); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateGroup", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, group); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateGroup", "operation", "WriteCreated", "error", err)
	}
}

func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	group, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetGroup", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, group); err != nil {
		h.log.Error("failed to write success response", "handler", "GetGroup", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListGroups", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	groups, total, err := h.service.ListGroups(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListGroups", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, groups, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListGroups", "operation", "WritePaginated", "error", err)
	}
}

func (h *GroupHandler) CreateVote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	groupID := ps.ByName("id")

	var vote model.Vote
	if err := json.NewDecoder(r.Body).Decode(&vote); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateVote", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateVote(r.Context(), groupID, &vote); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateVote", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, vote); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateVote", "operation", "WriteCreated", "error", err)
	}
}

func (h *GroupHandler) ListVotes(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	groupID := ps.ByName("id")

	votes, err := h.service.ListVotes(r.Context(), groupID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListVotes", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, votes); err != nil {
		h.log.Error("failed to write success response", "handler", "ListVotes", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GroupHandler) CastVote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	voteID := ps.ByName("id")

	var ballot model.Ballot
	if err := json.NewDecoder(r.Body).Decode(&ballot); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CastVote", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	vote, err := h.service.CastVote(r.Context(), voteID, &ballot)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CastVote", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, vote); err != nil {
		h.log.Error("failed to write success response", "handler", "CastVote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GroupHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/groups", h.CreateGroup)
	router.GET("/api/v1/groups", h.ListGroups)
	router.GET("/api/v1/groups/:id", h.GetGroup)
	router.POST("/api/v1/groups/:id/votes", h.CreateVote)
	router.GET("/api/v1/groups/:id/votes", h.ListVotes)
	router.POST("/api/v1/votes/:id/ballots", h.CastVote)
}
