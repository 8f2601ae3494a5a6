// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/jason-s-yu/cardhall/internal/database"
	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/game"
	"github.com/jason-s-yu/cardhall/internal/models"
)

type createGameRequest struct {
	Variant string                 `json:"variant"`
	Players []string               `json:"players"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type submitResponse struct {
	Accepted bool         `json:"accepted"`
	Reason   string       `json:"reason,omitempty"`
	State    engine.State `json:"state"`
}

// CreateGameHandler deals a new table. The response carries the observer view.
func (s *GameServer) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := engine.ParseVariant(req.Variant)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := game.ParseOptions(req.Options, game.DefaultOptions())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.Store.Create(v, req.Players, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrInvalidPlayerCount) || errors.Is(err, engine.ErrUnknownVariant) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"game_id": t.ID,
		"state":   t.ViewFor(""),
	})
}

func (s *GameServer) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"games": s.Store.IDs()})
}

// GameStateHandler returns the snapshot as seen by ?player=; without it, the observer view.
func (s *GameServer) GameStateHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := s.Store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, game.ErrGameNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, t.ViewFor(r.URL.Query().Get("player")))
}

// SubmitTurnHandler plays a turn. A rejected turn is still a 200: the body says why.
func (s *GameServer) SubmitTurnHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := s.Store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, game.ErrGameNotFound.Error())
		return
	}
	var turn models.Turn
	if err := json.NewDecoder(r.Body).Decode(&turn); err != nil {
		writeError(w, http.StatusBadRequest, "invalid turn")
		return
	}

	resp := submitResponse{Accepted: true}
	if err := t.Play(turn); err != nil {
		resp.Accepted = false
		resp.Reason = err.Error()
		if errors.Is(err, game.ErrTableAborted) {
			writeJSON(w, http.StatusConflict, resp)
			return
		}
	}
	resp.State = t.ViewFor(turn.PlayerID)
	writeJSON(w, http.StatusOK, resp)
}

func (s *GameServer) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.Store.Get(id); !ok {
		writeError(w, http.StatusNotFound, game.ErrGameNotFound.Error())
		return
	}
	s.Store.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *GameServer) ReplayHandler(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "replay storage not configured")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid replay id")
		return
	}
	rep, err := database.GetReplay(r.Context(), s.DB, id)
	if errors.Is(err, database.ErrReplayNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.Logger.Errorf("load replay %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load replay")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *GameServer) UserStatsHandler(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "stats storage not configured")
		return
	}
	stats, err := database.GetUserStats(r.Context(), s.DB, r.PathValue("id"))
	if err != nil {
		s.Logger.Errorf("load stats: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if stats == nil {
		stats = []models.UserStats{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}
