package match

import "context"

// Repository describes match persistence needs from use cases. Every mutation
// replaces the whole aggregate; no operation spans more than one match.
type Repository interface {
	List(ctx context.Context) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	GetByIDAndOwner(ctx context.Context, matchID, ownerID string) (Match, bool, error)
	Insert(ctx context.Context, item Match) error
	Save(ctx context.Context, item Match) error
	DeleteByIDAndOwner(ctx context.Context, matchID, ownerID string) (int64, error)
	// DeleteByID is maintenance-only (retention sweep); request handlers must
	// go through the owner-scoped delete.
	DeleteByID(ctx context.Context, matchID string) (int64, error)
}
