package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/match"
)

// MatchRepository is an in-memory store used for local runs and tests.
type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{items: make(map[string]match.Match)}
}

func (r *MatchRepository) List(_ context.Context) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item.Clone())
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return match.Match{}, false, nil
	}

	return item.Clone(), true, nil
}

func (r *MatchRepository) GetByIDAndOwner(_ context.Context, matchID, ownerID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok || item.CreatedBy != ownerID {
		return match.Match{}, false, nil
	}

	return item.Clone(), true, nil
}

func (r *MatchRepository) Insert(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item.Clone()
	return nil
}

func (r *MatchRepository) Save(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item.Clone()
	return nil
}

func (r *MatchRepository) DeleteByIDAndOwner(_ context.Context, matchID, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[matchID]
	if !ok || item.CreatedBy != ownerID {
		return 0, nil
	}

	delete(r.items, matchID)
	return 1, nil
}

func (r *MatchRepository) DeleteByID(_ context.Context, matchID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[matchID]; !ok {
		return 0, nil
	}

	delete(r.items, matchID)
	return 1, nil
}
