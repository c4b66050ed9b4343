package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/peladahub/pelada-service/internal/balancer"
	"github.com/peladahub/pelada-service/internal/service"
	"github.com/peladahub/pelada-service/pkg/response"
)

// DrawHandler exposes the team draw endpoint.
type DrawHandler struct {
	svc service.DrawService
}

func NewDrawHandler(svc service.DrawService) *DrawHandler { return &DrawHandler{svc: svc} }

func (h *DrawHandler) Register(r *gin.RouterGroup) {
	r.Group("/teams").POST("/draw", h.draw)
}

type drawRequest struct {
	PlayerIDs      []uuid.UUID `json:"player_ids"`
	Mode           string      `json:"mode"` // random (default) | balanced
	PlayersPerTeam int         `json:"players_per_team"`
}

func (h *DrawHandler) draw(c *gin.Context) {
	var req drawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	teams, err := h.svc.DrawTeams(c.Request.Context(), req.PlayerIDs, balancer.Mode(req.Mode), req.PlayersPerTeam)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"teams": teams})
}
