package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/match"
	qb "github.com/eormeno12/mipichanga-matches-api/internal/platform/querybuilder"
)

const matchesTable = "matches"

var matchColumns = []string{
	"id",
	"created_by",
	"name",
	"date",
	"field",
	"home",
	"away",
	"created_at",
	"updated_at",
	"deleted_at",
}

// MatchRepository persists matches in Postgres. Deletes initiated by owners
// are soft deletes; only the retention purge removes rows for real.
type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) List(ctx context.Context) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).From(matchesTable).
		Where(qb.IsNull("deleted_at")).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item, err := matchFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From(matchesTable).
		Where(
			qb.Eq("id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}

	item, err := matchFromRow(row)
	if err != nil {
		return match.Match{}, false, err
	}
	return item, true, nil
}

func (r *MatchRepository) GetByIDAndOwner(ctx context.Context, matchID, ownerID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From(matchesTable).
		Where(
			qb.Eq("id", matchID),
			qb.Eq("created_by", ownerID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id and owner query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id and owner: %w", err)
	}

	item, err := matchFromRow(row)
	if err != nil {
		return match.Match{}, false, err
	}
	return item, true, nil
}

func (r *MatchRepository) Insert(ctx context.Context, item match.Match) error {
	row, err := matchToRow(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertInto(matchesTable).
		Columns("id", "created_by", "name", "date", "field", "home", "away", "created_at", "updated_at").
		Values(row.ID, row.CreatedBy, row.Name, row.Date, row.Field, row.Home, row.Away, row.CreatedAt, row.UpdatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *MatchRepository) Save(ctx context.Context, item match.Match) error {
	row, err := matchToRow(item)
	if err != nil {
		return err
	}

	query, args, err := qb.Update(matchesTable).
		Set("name", row.Name).
		Set("date", row.Date).
		Set("field", row.Field).
		Set("home", row.Home).
		Set("away", row.Away).
		Set("updated_at", row.UpdatedAt).
		Where(
			qb.Eq("id", row.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save match id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *MatchRepository) DeleteByIDAndOwner(ctx context.Context, matchID, ownerID string) (int64, error) {
	query, args, err := qb.Update(matchesTable).
		Set("deleted_at", time.Now().UTC()).
		Where(
			qb.Eq("id", matchID),
			qb.Eq("created_by", ownerID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete match id=%s: %w", matchID, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted matches id=%s: %w", matchID, err)
	}
	return count, nil
}

// DeleteByID removes the row outright, soft-deleted or not. It backs the
// retention purge and must not be exposed to request handlers.
func (r *MatchRepository) DeleteByID(ctx context.Context, matchID string) (int64, error) {
	query, args, err := qb.DeleteFrom(matchesTable).
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build purge match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge match id=%s: %w", matchID, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged matches id=%s: %w", matchID, err)
	}
	return count, nil
}
