package handler

import (
	"net/http"
	"strconv"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/avillegas/roster-stats-service/internal/service"
	"github.com/avillegas/roster-stats-service/pkg/response"
	"github.com/gin-gonic/gin"
)

type PlayerHandler struct {
	svc   service.RosterService
	evals service.EvaluationService
}

func NewPlayerHandler(svc service.RosterService, evals service.EvaluationService) *PlayerHandler {
	return &PlayerHandler{svc: svc, evals: evals}
}

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/:id", h.getByID)
		g.PUT("/:id", h.updateProfile)
		g.DELETE("/:id", h.delete)
		// Evaluation history newest first; feeds the profile radar chart.
		g.GET("/:id/evaluations", h.listEvaluations)
	}
}

type playerProfileRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Position      string `json:"position"`
	SquadNumber   int    `json:"squad_number"`
	Age           int    `json:"age"`
	PreferredFoot string `json:"preferred_foot"`
}

func (r playerProfileRequest) profile() model.PlayerProfile {
	return model.PlayerProfile{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Position:      r.Position,
		SquadNumber:   r.SquadNumber,
		Age:           r.Age,
		PreferredFoot: r.PreferredFoot,
	}
}

func (h *PlayerHandler) create(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req playerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	player, err := h.svc.CreatePlayer(c.Request.Context(), scope, req.profile())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, player)
}

func (h *PlayerHandler) getByID(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	player, err := h.svc.GetPlayer(c.Request.Context(), scope, id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) list(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	// Atoi errors are ignored intentionally, as 0 is a valid default for limit/offset, handled by the service layer.
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page := repository.Page{Limit: limit, Offset: offset}
	res, err := h.svc.ListPlayers(c.Request.Context(), scope, page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *PlayerHandler) updateProfile(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req playerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	player, err := h.svc.UpdatePlayerProfile(c.Request.Context(), scope, id, req.profile())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) delete(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.DeletePlayer(c.Request.Context(), scope, id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlayerHandler) listEvaluations(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	evals, err := h.evals.ListByPlayer(c.Request.Context(), scope, id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, evals)
}

// parseIDParam extracts a positive int64 path parameter or builds the
// canonical field error for it.
func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewInvalidInputError([]service.FieldError{{Field: name, Message: "must be a valid integer > 0"}})
	}
	return id, nil
}
