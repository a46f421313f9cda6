package httpapi

import (
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/eormeno12/mipichanga-matches-api/internal/usecase"
)

type createMatchRequest struct {
	Name  string       `json:"name" validate:"required,max=100"`
	Date  string       `json:"date" validate:"required"`
	Field fieldPayload `json:"field" validate:"required"`
	Home  teamPayload  `json:"home" validate:"required"`
	Away  teamPayload  `json:"away" validate:"required"`
}

type updateMatchRequest struct {
	Name  *string       `json:"name" validate:"omitempty,min=1,max=100"`
	Date  *string       `json:"date"`
	Field *fieldPayload `json:"field"`
}

type deleteMatchResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	matches, err := h.matchService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(ctx, m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := matchIDFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, item))
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createMatchRequest
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

	date, err := parseMatchDate(req.Date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Create(ctx, usecase.CreateMatchInput{
		OwnerID: principal.UserID,
		Name:    req.Name,
		Date:    date,
		Field:   fieldFromPayload(req.Field),
		Home:    usecase.TeamInput{Name: req.Home.Name, Lineup: req.Home.Lineup},
		Away:    usecase.TeamInput{Name: req.Away.Name, Lineup: req.Away.Lineup},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "owner_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(ctx, item))
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatch")
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

	var req updateMatchRequest
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

	input := usecase.UpdateMatchInput{
		OwnerID: principal.UserID,
		MatchID: matchID,
		Name:    req.Name,
	}
	if req.Date != nil {
		date, err := parseMatchDate(*req.Date)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		input.Date = &date
	}
	if req.Field != nil {
		field := fieldFromPayload(*req.Field)
		input.Field = &field
	}

	item, err := h.matchService.Update(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "update match failed", "match_id", matchID, "owner_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, item))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
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

	count, err := h.matchService.Delete(ctx, principal.UserID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", matchID, "owner_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deleteMatchResponse{DeletedCount: count})
}

func parseMatchDate(raw string) (time.Time, error) {
	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be RFC 3339: %v", usecase.ErrInvalidInput, err)
	}
	return date, nil
}
