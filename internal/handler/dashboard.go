package handler

import (
	"net/http"
	"strconv"

	"github.com/avillegas/roster-stats-service/internal/service"
	"github.com/avillegas/roster-stats-service/pkg/response"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc service.DashboardService
}

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/dashboard")
	{
		g.GET("/rankings", h.rankings)
		g.GET("/collective", h.collective)
		g.GET("/season", h.season)
	}
}

func (h *DashboardHandler) rankings(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	players, err := h.svc.PlayerRankings(c.Request.Context(), scope, c.Query("metric"), limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, players)
}

func (h *DashboardHandler) collective(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	events, err := h.svc.CollectiveEvolution(c.Request.Context(), scope)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, events)
}

func (h *DashboardHandler) season(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	summary, err := h.svc.SeasonSummary(c.Request.Context(), scope)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, summary)
}
