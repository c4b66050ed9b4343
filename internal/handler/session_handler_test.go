package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/peladahub/pelada-service/internal/handler"
	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/session"
)

// stubPingerNoop satisfies handler.Pinger (health endpoints not focus here).
type stubPingerNoop struct{}

func (stubPingerNoop) Ping(ctx context.Context) error { return nil }

type recordingArchiver struct {
	mu       sync.Mutex
	archived []model.Match
}

func (r *recordingArchiver) Archive(_ context.Context, m model.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archived = append(r.archived, m)
	return nil
}

func sessionRouter(t *testing.T) (*gin.Engine, *session.Engine, *recordingArchiver) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	arch := &recordingArchiver{}
	eng := session.NewEngine(session.Rules{}, arch, clockwork.NewFakeClock(), zerolog.Nop())
	r := gin.New()
	handler.NewSessionHandler(eng).Register(r.Group(handler.APIV1Prefix))
	return r, eng, arch
}

func makeTeam(name string, size int) model.Team {
	players := make([]model.Player, size)
	for i := range players {
		players[i] = model.Player{ID: uuid.New(), Name: name + " jogador", SkillLevel: 5}
	}
	return model.Team{ID: uuid.New(), Name: name, Players: players}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionHandler_StartAndSnapshot(t *testing.T) {
	r, _, _ := sessionRouter(t)
	home, away := makeTeam("Time 1", 4), makeTeam("Time 2", 4)

	w := doJSON(t, r, http.MethodPost, "/api/v1/session/start", gin.H{"teams": []model.Team{home, away}})
	if w.Code != http.StatusCreated {
		t.Fatalf("start: %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/session", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("snapshot: %d", w.Code)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if !snap.Active || snap.HomeTeam.ID != home.ID || snap.GameTimeSeconds != 360 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestSessionHandler_StartRejectsSingleTeam(t *testing.T) {
	r, _, _ := sessionRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/session/start", gin.H{"teams": []model.Team{makeTeam("Time 1", 4)}})
	if w.Code != http.StatusConflict {
		t.Fatalf("got %d, want 409: %s", w.Code, w.Body.String())
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error != "command_rejected" {
		t.Fatalf("error %q, want command_rejected", payload.Error)
	}
}

func TestSessionHandler_GoalFlow(t *testing.T) {
	r, _, arch := sessionRouter(t)
	home, away := makeTeam("Time 1", 4), makeTeam("Time 2", 4)
	doJSON(t, r, http.MethodPost, "/api/v1/session/start", gin.H{"teams": []model.Team{home, away}})

	w := doJSON(t, r, http.MethodPost, "/api/v1/session/goals", gin.H{
		"side":      "home",
		"scorer_id": home.Players[0].ID,
		"assist_id": home.Players[1].ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("goal: %d: %s", w.Code, w.Body.String())
	}

	// Scorer from the wrong side is a 409 command rejection.
	w = doJSON(t, r, http.MethodPost, "/api/v1/session/goals", gin.H{
		"side":      "home",
		"scorer_id": away.Players[0].ID,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("wrong-side goal: %d, want 409", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/session/finish", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("finish: %d: %s", w.Code, w.Body.String())
	}
	var m model.Match
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode match: %v", err)
	}
	if m.ScoreHome != 1 || m.EndReason != model.EndReasonTimeExpired {
		t.Fatalf("unexpected match: score %d-%d reason %s", m.ScoreHome, m.ScoreAway, m.EndReason)
	}
	if len(arch.archived) != 1 {
		t.Fatalf("%d matches archived, want 1", len(arch.archived))
	}
}

func TestSessionHandler_RotateAndEnd(t *testing.T) {
	r, _, _ := sessionRouter(t)
	teams := []model.Team{makeTeam("Time 1", 4), makeTeam("Time 2", 4), makeTeam("Time 3", 4)}
	doJSON(t, r, http.MethodPost, "/api/v1/session/start", gin.H{"teams": teams})

	w := doJSON(t, r, http.MethodPost, "/api/v1/session/rotate", gin.H{"draw_winner_team_id": teams[1].ID})
	if w.Code != http.StatusOK {
		t.Fatalf("rotate: %d: %s", w.Code, w.Body.String())
	}
	var rotated struct {
		Session session.Snapshot `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rotated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rotated.Session.HomeTeam.ID != teams[1].ID {
		t.Fatal("draw winner did not take the field")
	}

	w = doJSON(t, r, http.MethodDelete, "/api/v1/session", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("end: %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/v1/session", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("end without session: %d, want 409", w.Code)
	}
}

func TestSessionHandler_GuestEndpoint(t *testing.T) {
	r, _, _ := sessionRouter(t)
	teams := []model.Team{makeTeam("Time 1", 4), makeTeam("Time 2", 3), makeTeam("Time 3", 4)}
	doJSON(t, r, http.MethodPost, "/api/v1/session/start", gin.H{"teams": teams})

	w := doJSON(t, r, http.MethodPost, "/api/v1/session/guests", gin.H{
		"side":      "away",
		"player_id": teams[2].Players[0].ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add guest: %d: %s", w.Code, w.Body.String())
	}

	// A player already on the field cannot guest.
	w = doJSON(t, r, http.MethodPost, "/api/v1/session/guests", gin.H{
		"side":      "away",
		"player_id": teams[0].Players[0].ID,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("active player as guest: %d, want 409", w.Code)
	}
}
