package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/service"
	"github.com/peladahub/pelada-service/internal/session"
	"github.com/peladahub/pelada-service/pkg/response"
)

// SessionEngine is the contract the handlers need from the match session
// engine. Kept local so handler tests can stub it.
type SessionEngine interface {
	Start(teams []model.Team) error
	Pause() error
	Resume() error
	RecordGoal(side model.Side, scorerID uuid.UUID, assistID *uuid.UUID) (model.Goal, error)
	AddGuest(side model.Side, playerID uuid.UUID) (model.Player, error)
	Finish(ctx context.Context, drawWinner *model.Side) (model.Match, error)
	Rotate(drawWinnerTeamID *uuid.UUID) ([]string, error)
	End() error
	Snapshot() session.Snapshot
	Subscribe() (<-chan session.Snapshot, func())
}

// SessionHandler exposes the live match session commands.
type SessionHandler struct {
	eng SessionEngine
}

func NewSessionHandler(eng SessionEngine) *SessionHandler { return &SessionHandler{eng: eng} }

func (h *SessionHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/session")
	{
		g.GET("", h.snapshot)
		g.POST("/start", h.start)
		g.POST("/pause", h.pause)
		g.POST("/resume", h.resume)
		g.POST("/goals", h.recordGoal)
		g.POST("/guests", h.addGuest)
		g.POST("/finish", h.finish)
		g.POST("/rotate", h.rotate)
		g.DELETE("", h.end)
	}
}

func (h *SessionHandler) snapshot(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.eng.Snapshot())
}

type startSessionRequest struct {
	Teams []model.Team `json:"teams"`
}

func (h *SessionHandler) start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	if err := h.eng.Start(req.Teams); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, h.eng.Snapshot())
}

func (h *SessionHandler) pause(c *gin.Context) {
	if err := h.eng.Pause(); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, h.eng.Snapshot())
}

func (h *SessionHandler) resume(c *gin.Context) {
	if err := h.eng.Resume(); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, h.eng.Snapshot())
}

type recordGoalRequest struct {
	Side     string     `json:"side"` // home | away
	ScorerID uuid.UUID  `json:"scorer_id"`
	AssistID *uuid.UUID `json:"assist_id,omitempty"`
}

func (h *SessionHandler) recordGoal(c *gin.Context) {
	var req recordGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	goal, err := h.eng.RecordGoal(parseSide(req.Side), req.ScorerID, req.AssistID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, gin.H{"goal": goal, "session": h.eng.Snapshot()})
}

type addGuestRequest struct {
	Side     string    `json:"side"`
	PlayerID uuid.UUID `json:"player_id"`
}

func (h *SessionHandler) addGuest(c *gin.Context) {
	var req addGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	guest, err := h.eng.AddGuest(parseSide(req.Side), req.PlayerID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, gin.H{"guest": guest, "session": h.eng.Snapshot()})
}

type finishSessionRequest struct {
	DrawWinner *string `json:"draw_winner,omitempty"` // home | away, tie-break draw result
}

func (h *SessionHandler) finish(c *gin.Context) {
	var req finishSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.WriteError(c, service.ErrInvalidInput)
			return
		}
	}
	var winner *model.Side
	if req.DrawWinner != nil {
		s := parseSide(*req.DrawWinner)
		winner = &s
	}
	m, err := h.eng.Finish(c.Request.Context(), winner)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

type rotateRequest struct {
	DrawWinnerTeamID *uuid.UUID `json:"draw_winner_team_id,omitempty"`
}

func (h *SessionHandler) rotate(c *gin.Context) {
	var req rotateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.WriteError(c, service.ErrInvalidInput)
			return
		}
	}
	removed, err := h.eng.Rotate(req.DrawWinnerTeamID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"removed_guests": removed, "session": h.eng.Snapshot()})
}

func (h *SessionHandler) end(c *gin.Context) {
	if err := h.eng.End(); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseSide is lenient on case; invalid values surface as engine rejections.
func parseSide(s string) model.Side {
	return model.Side(strings.ToLower(strings.TrimSpace(s)))
}
