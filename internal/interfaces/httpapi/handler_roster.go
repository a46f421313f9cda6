package httpapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/match"
	"github.com/eormeno12/mipichanga-matches-api/internal/usecase"
)

type addPlayerRequest struct {
	Team string `json:"team" validate:"required,oneof=home away"`
	Name string `json:"name" validate:"required,max=100"`
	Pos  int    `json:"pos" validate:"required,min=1"`
}

// AddPlayerToMatch lets any authenticated user join a match roster. The
// acting principal is always the player being added, so no ownership
// check applies here.
func (h *Handler) AddPlayerToMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddPlayerToMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID, err := matchIDFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req addPlayerRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	side, ok := match.ParseTeamSide(req.Team)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown team side %q", usecase.ErrInvalidInput, req.Team))
		return
	}

	item, err := h.matchService.AddPlayer(ctx, usecase.AddPlayerInput{
		MatchID:  matchID,
		Side:     side,
		PlayerID: principal.UserID,
		Name:     req.Name,
		Pos:      req.Pos,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add player failed", "match_id", matchID, "player_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, item))
}

// RemovePlayerFromMatch removes the acting principal from whichever
// roster they occupy, checking the home team first.
func (h *Handler) RemovePlayerFromMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemovePlayerFromMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID, err := matchIDFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.RemovePlayer(ctx, matchID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "remove player failed", "match_id", matchID, "player_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, item))
}
