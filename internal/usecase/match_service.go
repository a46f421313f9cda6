package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/match"
	idgen "github.com/eormeno12/mipichanga-matches-api/internal/platform/id"
	"github.com/eormeno12/mipichanga-matches-api/internal/platform/logging"
)

// TeamInput carries the team payload accepted at match creation. Rosters
// always start empty; players join through AddPlayer.
type TeamInput struct {
	Name   string
	Lineup string
}

type CreateMatchInput struct {
	OwnerID string
	Name    string
	Date    time.Time
	Field   match.Field
	Home    TeamInput
	Away    TeamInput
}

// UpdateMatchInput is a partial payload: nil fields keep their current value.
// Rosters and ownership are never touched by an update.
type UpdateMatchInput struct {
	OwnerID string
	MatchID string
	Name    *string
	Date    *time.Time
	Field   *match.Field
}

type AddPlayerInput struct {
	MatchID  string
	Side     match.TeamSide
	PlayerID string
	Name     string
	Pos      int
}

// MatchService owns match lifecycle and roster consistency. It is stateless
// and safe for concurrent use; every mutation is a load-mutate-save cycle
// against the repository, with no cross-request locking.
type MatchService struct {
	matchRepo match.Repository
	idGen     idgen.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewMatchService(matchRepo match.Repository, idGen idgen.Generator, logger *logging.Logger) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		matchRepo: matchRepo,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *MatchService) List(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.List")
	defer span.End()

	items, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	return items, nil
}

func (s *MatchService) Get(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	return item, nil
}

func (s *MatchService) Create(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create")
	defer span.End()

	input.OwnerID = strings.TrimSpace(input.OwnerID)
	input.Name = strings.TrimSpace(input.Name)

	if input.OwnerID == "" {
		return match.Match{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return match.Match{}, fmt.Errorf("%w: match name is required", ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return match.Match{}, fmt.Errorf("%w: match date is required", ErrInvalidInput)
	}

	matchID, err := s.idGen.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	item := match.Match{
		ID:        matchID,
		CreatedBy: input.OwnerID,
		Name:      input.Name,
		Date:      input.Date.UTC(),
		Field:     input.Field,
		Home:      match.Team{Name: input.Home.Name, Lineup: input.Home.Lineup},
		Away:      match.Team{Name: input.Away.Name, Lineup: input.Away.Lineup},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.matchRepo.Insert(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("insert match: %w", err)
	}

	s.logger.InfoContext(ctx, "match created",
		"match_id", item.ID,
		"owner_id", item.CreatedBy,
		"date", item.Date,
	)

	return item, nil
}

// Update loads the match scoped by owner, so a mismatch is indistinguishable
// from a missing match, then merges the partial payload and saves.
func (s *MatchService) Update(ctx context.Context, input UpdateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Update")
	defer span.End()

	input.OwnerID = strings.TrimSpace(input.OwnerID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	if input.OwnerID == "" {
		return match.Match{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if input.MatchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByIDAndOwner(ctx, input.MatchID, input.OwnerID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match by id and owner: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return match.Match{}, fmt.Errorf("%w: match name cannot be empty", ErrInvalidInput)
		}
		item.Name = name
	}
	if input.Date != nil {
		if input.Date.IsZero() {
			return match.Match{}, fmt.Errorf("%w: match date cannot be zero", ErrInvalidInput)
		}
		item.Date = input.Date.UTC()
	}
	if input.Field != nil {
		item.Field = *input.Field
	}
	item.UpdatedAt = s.now().UTC()

	if err := s.matchRepo.Save(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("save match: %w", err)
	}

	s.logger.InfoContext(ctx, "match updated",
		"match_id", item.ID,
		"owner_id", item.CreatedBy,
	)

	return item, nil
}

// Delete removes the match scoped by owner. Deleting zero rows is not an
// error; callers receive the count and decide what to tell the client.
func (s *MatchService) Delete(ctx context.Context, ownerID, matchID string) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete")
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	matchID = strings.TrimSpace(matchID)
	if ownerID == "" {
		return 0, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if matchID == "" {
		return 0, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	count, err := s.matchRepo.DeleteByIDAndOwner(ctx, matchID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete match by id and owner: %w", err)
	}

	s.logger.InfoContext(ctx, "match delete requested",
		"match_id", matchID,
		"owner_id", ownerID,
		"deleted", count,
	)

	return count, nil
}

// AddPlayer joins the caller to one roster of the match. Any authenticated
// user may join any match; only the per-team position check guards the slot.
func (s *MatchService) AddPlayer(ctx context.Context, input AddPlayerInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.AddPlayer")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.Name = strings.TrimSpace(input.Name)

	if input.PlayerID == "" {
		return match.Match{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return match.Match{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	if input.Pos <= 0 {
		return match.Match{}, fmt.Errorf("%w: player pos must be > 0", ErrInvalidInput)
	}
	if _, ok := match.ParseTeamSide(string(input.Side)); !ok {
		return match.Match{}, fmt.Errorf("%w: team must be home or away", ErrInvalidInput)
	}

	item, err := s.Get(ctx, input.MatchID)
	if err != nil {
		return match.Match{}, err
	}

	player := match.Player{ID: input.PlayerID, Name: input.Name, Pos: input.Pos}
	if err := item.AddPlayer(input.Side, player); err != nil {
		return match.Match{}, err
	}
	item.UpdatedAt = s.now().UTC()

	if err := s.matchRepo.Save(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("save match after add player: %w", err)
	}

	s.logger.InfoContext(ctx, "player added to match",
		"match_id", item.ID,
		"player_id", player.ID,
		"team", string(input.Side),
		"pos", player.Pos,
	)

	return item, nil
}

// RemovePlayer removes the first roster entry matching playerID; the home
// roster is searched before the away roster.
func (s *MatchService) RemovePlayer(ctx context.Context, matchID, playerID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.RemovePlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return match.Match{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	item, err := s.Get(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}

	side, removed := item.RemovePlayer(playerID)
	if !removed {
		return match.Match{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	item.UpdatedAt = s.now().UTC()

	if err := s.matchRepo.Save(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("save match after remove player: %w", err)
	}

	s.logger.InfoContext(ctx, "player removed from match",
		"match_id", item.ID,
		"player_id", playerID,
		"team", string(side),
	)

	return item, nil
}
