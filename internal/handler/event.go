package handler

import (
	"net/http"
	"strconv"

	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/avillegas/roster-stats-service/internal/service"
	"github.com/avillegas/roster-stats-service/pkg/response"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler { return &EventHandler{svc: svc} }

func (h *EventHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/events")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/:id", h.getByID)
		g.DELETE("/:id", h.delete)
		g.PUT("/:id/callups", h.setCallUps)
	}
}

type createEventRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Condition   string `json:"condition"`
}

func (h *EventHandler) create(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	event, err := h.svc.CreateEvent(c.Request.Context(), scope, service.CreateEventInput{
		Type:        req.Type,
		Description: req.Description,
		Date:        req.Date,
		Condition:   req.Condition,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, event)
}

func (h *EventHandler) getByID(c *gin.Context) {
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
	event, err := h.svc.GetEvent(c.Request.Context(), scope, id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, event)
}

func (h *EventHandler) list(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page := repository.Page{Limit: limit, Offset: offset}
	res, err := h.svc.ListEvents(c.Request.Context(), scope, c.Query("type"), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

type setCallUpsRequest struct {
	PlayerIDs []int64 `json:"player_ids"`
}

func (h *EventHandler) setCallUps(c *gin.Context) {
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
	var req setCallUpsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	event, err := h.svc.SetCallUps(c.Request.Context(), scope, id, req.PlayerIDs)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, event)
}

func (h *EventHandler) delete(c *gin.Context) {
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
	if err := h.svc.DeleteEvent(c.Request.Context(), scope, id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
