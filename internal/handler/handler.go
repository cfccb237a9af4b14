package handler

import (
	"github.com/avillegas/roster-stats-service/internal/service"
	"github.com/gin-gonic/gin"
)

// Register mounts all public routes on the given engine.
// Accepts service layer dependencies for API endpoints.
func Register(r *gin.Engine, repo Pinger, teamSvc service.TeamService, rosterSvc service.RosterService, eventSvc service.EventService, evalSvc service.EvaluationService, dashSvc service.DashboardService) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix) // Versioning added via single source of truth
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewTeamHandler(teamSvc).Register(api)
		NewPlayerHandler(rosterSvc, evalSvc).Register(api)
		NewEventHandler(eventSvc).Register(api)
		NewEvaluationHandler(evalSvc).Register(api)
		NewDashboardHandler(dashSvc).Register(api)
	}
}
