package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/peladahub/pelada-service/internal/repository"
	"github.com/peladahub/pelada-service/internal/service"
	"github.com/peladahub/pelada-service/pkg/response"
)

type PlayerHandler struct {
	svc service.PlayerService
}

func NewPlayerHandler(svc service.PlayerService) *PlayerHandler { return &PlayerHandler{svc: svc} }

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/:player_id", h.getByID)
		g.PUT("/:player_id", h.update)
		g.DELETE("/:player_id", h.delete)
		g.GET("/:player_id/stats", h.getAggregatedStats)
	}
}

type playerRequest struct {
	Name       string `json:"name"`
	Nickname   string `json:"nickname"`
	Position   string `json:"position"`
	SkillLevel int    `json:"skill_level"`
}

func (r playerRequest) toInput() service.PlayerInput {
	return service.PlayerInput{
		Name:       r.Name,
		Nickname:   r.Nickname,
		Position:   r.Position,
		SkillLevel: r.SkillLevel,
	}
}

// parseUUIDParam parses a path parameter as a uuid, writing the error response itself.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: name, Message: "must be a valid uuid"}}))
		return uuid.Nil, false
	}
	return id, true
}

// pageFromQuery reads limit/offset. Atoi errors are ignored intentionally, as
// 0 is a valid default handled by the service layer.
func pageFromQuery(c *gin.Context) repository.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return repository.Page{Limit: limit, Offset: offset}
}

func (h *PlayerHandler) create(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	player, err := h.svc.CreatePlayer(c.Request.Context(), req.toInput())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, player)
}

func (h *PlayerHandler) list(c *gin.Context) {
	res, err := h.svc.ListPlayers(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *PlayerHandler) getByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "player_id")
	if !ok {
		return
	}
	player, err := h.svc.GetPlayer(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "player_id")
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	player, err := h.svc.UpdatePlayer(c.Request.Context(), id, req.toInput())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "player_id")
	if !ok {
		return
	}
	if err := h.svc.DeletePlayer(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlayerHandler) getAggregatedStats(c *gin.Context) {
	id, ok := parseUUIDParam(c, "player_id")
	if !ok {
		return
	}
	stats, err := h.svc.GetPlayerAggregatedStats(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, stats)
}
