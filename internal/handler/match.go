package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peladahub/pelada-service/internal/service"
	"github.com/peladahub/pelada-service/pkg/response"
)

// MatchHandler serves the archived match history.
type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/matches")
	{
		g.GET("", h.list)
		g.GET("/:match_id", h.getByID)
	}
}

func (h *MatchHandler) list(c *gin.Context) {
	res, err := h.svc.ListMatches(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *MatchHandler) getByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "match_id")
	if !ok {
		return
	}
	m, err := h.svc.GetMatch(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}
