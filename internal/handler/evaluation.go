package handler

import (
	"net/http"
	"strconv"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/service"
	"github.com/avillegas/roster-stats-service/pkg/response"
	"github.com/gin-gonic/gin"
)

type EvaluationHandler struct {
	svc service.EvaluationService
}

func NewEvaluationHandler(svc service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{svc: svc}
}

func (h *EvaluationHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/events/:id/evaluations")
	{
		g.POST("", h.evaluate)
		g.GET("", h.listByEvent)
	}
}

// evaluateRequest keys the per-player inputs by player ID. JSON object keys
// are strings, so the handler converts them before calling the service.
type evaluateRequest struct {
	Evaluations map[string]model.EvaluationInput `json:"evaluations"`
	Score       *model.MatchScore                `json:"score,omitempty"`
}

func (h *EvaluationHandler) evaluate(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	inputs := make(map[int64]model.EvaluationInput, len(req.Evaluations))
	for key, in := range req.Evaluations {
		playerID, convErr := strconv.ParseInt(key, 10, 64)
		if convErr != nil || playerID <= 0 {
			response.WriteError(c, service.NewInvalidInputError([]service.FieldError{
				{Field: "evaluations", Message: "keys must be positive player ids"},
			}))
			return
		}
		inputs[playerID] = in
	}
	result, err := h.svc.EvaluateEvent(c.Request.Context(), scope, eventID, inputs, req.Score)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, result)
}

func (h *EvaluationHandler) listByEvent(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	evaluations, err := h.svc.ListByEvent(c.Request.Context(), scope, eventID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, evaluations)
}
