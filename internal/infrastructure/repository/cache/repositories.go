// Package cache decorates repositories with the in-process TTL store.
package cache

import (
	"context"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/match"
	basecache "github.com/eormeno12/mipichanga-matches-api/internal/platform/cache"
)

type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) List(ctx context.Context) ([]match.Match, error) {
	v, err := r.cache.GetOrLoad(ctx, matchListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return cloneMatches(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return cloneMatches(items), nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, matchByIDKey(matchID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return cachedMatchByID{value: item.Clone(), exists: exists}, nil
	})
	if err != nil {
		return match.Match{}, false, err
	}

	cached, _ := v.(cachedMatchByID)
	return cached.value.Clone(), cached.exists, nil
}

// GetByIDAndOwner is the authorization read behind updates and deletes, so it
// always goes to the source of truth.
func (r *MatchRepository) GetByIDAndOwner(ctx context.Context, matchID, ownerID string) (match.Match, bool, error) {
	return r.next.GetByIDAndOwner(ctx, matchID, ownerID)
}

func (r *MatchRepository) Insert(ctx context.Context, item match.Match) error {
	if err := r.next.Insert(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx, item.ID)
	return nil
}

func (r *MatchRepository) Save(ctx context.Context, item match.Match) error {
	if err := r.next.Save(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx, item.ID)
	return nil
}

func (r *MatchRepository) DeleteByIDAndOwner(ctx context.Context, matchID, ownerID string) (int64, error) {
	count, err := r.next.DeleteByIDAndOwner(ctx, matchID, ownerID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		r.invalidate(ctx, matchID)
	}
	return count, nil
}

func (r *MatchRepository) DeleteByID(ctx context.Context, matchID string) (int64, error) {
	count, err := r.next.DeleteByID(ctx, matchID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		r.invalidate(ctx, matchID)
	}
	return count, nil
}

func (r *MatchRepository) invalidate(ctx context.Context, matchID string) {
	r.cache.Delete(ctx, matchListKey)
	r.cache.Delete(ctx, matchByIDKey(matchID))
}

type cachedMatchByID struct {
	value  match.Match
	exists bool
}

const matchListKey = "match:list"

func matchByIDKey(matchID string) string {
	return "match:id:" + matchID
}

func cloneMatches(items []match.Match) []match.Match {
	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}
