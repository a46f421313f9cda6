package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/match"
	idgen "github.com/eormeno12/mipichanga-matches-api/internal/platform/id"
	"github.com/eormeno12/mipichanga-matches-api/internal/platform/logging"
	"github.com/eormeno12/mipichanga-matches-api/internal/usecase"
)

type Handler struct {
	matchService *usecase.MatchService
	logger       *logging.Logger
	validator    *validator.Validate
}

func NewHandler(matchService *usecase.MatchService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService: matchService,
		logger:       logger,
		validator:    validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// matchIDFromPath checks the id format before it reaches the repositories,
// mirroring the validation clients already rely on.
func matchIDFromPath(r *http.Request) (string, error) {
	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if !idgen.IsValid(matchID) {
		return "", fmt.Errorf("%w: match id must be a 24 character hex string", usecase.ErrInvalidInput)
	}
	return matchID, nil
}

type fieldLocationPayload struct {
	Prefix  string `json:"prefix" validate:"required"`
	City    string `json:"city" validate:"required"`
	Country string `json:"country" validate:"required"`
}

type fieldPayload struct {
	ID       string               `json:"id" validate:"required"`
	Name     string               `json:"name" validate:"required"`
	ImageURL string               `json:"imageUrl" validate:"required,url"`
	Location fieldLocationPayload `json:"location" validate:"required"`
}

type teamPayload struct {
	Name   string `json:"name" validate:"required,max=100"`
	Lineup string `json:"lineup" validate:"required"`
}

// matchDTO is the public projection of a match. Audit timestamps stay
// internal.
type matchDTO struct {
	ID        string   `json:"id"`
	CreatedBy string   `json:"createdBy"`
	Name      string   `json:"name"`
	Date      string   `json:"date"`
	Field     fieldDTO `json:"field"`
	Home      teamDTO  `json:"home"`
	Away      teamDTO  `json:"away"`
}

type fieldDTO struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	ImageURL string           `json:"imageUrl"`
	Location fieldLocationDTO `json:"location"`
}

type fieldLocationDTO struct {
	Prefix  string `json:"prefix"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type teamDTO struct {
	Name    string      `json:"name"`
	Lineup  string      `json:"lineup"`
	Players []playerDTO `json:"players"`
}

type playerDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Pos  int    `json:"pos"`
}

func matchToDTO(ctx context.Context, v match.Match) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	return matchDTO{
		ID:        v.ID,
		CreatedBy: v.CreatedBy,
		Name:      v.Name,
		Date:      v.Date.UTC().Format(time.RFC3339),
		Field: fieldDTO{
			ID:       v.Field.ID,
			Name:     v.Field.Name,
			ImageURL: v.Field.ImageURL,
			Location: fieldLocationDTO{
				Prefix:  v.Field.Location.Prefix,
				City:    v.Field.Location.City,
				Country: v.Field.Location.Country,
			},
		},
		Home: teamToDTO(v.Home),
		Away: teamToDTO(v.Away),
	}
}

func teamToDTO(v match.Team) teamDTO {
	players := make([]playerDTO, 0, len(v.Players))
	for _, p := range v.Players {
		players = append(players, playerDTO{ID: p.ID, Name: p.Name, Pos: p.Pos})
	}

	return teamDTO{
		Name:    v.Name,
		Lineup:  v.Lineup,
		Players: players,
	}
}

func fieldFromPayload(p fieldPayload) match.Field {
	return match.Field{
		ID:       p.ID,
		Name:     p.Name,
		ImageURL: p.ImageURL,
		Location: match.FieldLocation{
			Prefix:  p.Location.Prefix,
			City:    p.Location.City,
			Country: p.Location.Country,
		},
	}
}
