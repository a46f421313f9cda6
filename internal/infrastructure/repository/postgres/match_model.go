package postgres

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/match"
)

type matchTableModel struct {
	ID        string     `db:"id"`
	CreatedBy string     `db:"created_by"`
	Name      string     `db:"name"`
	Date      time.Time  `db:"date"`
	Field     []byte     `db:"field"`
	Home      []byte     `db:"home"`
	Away      []byte     `db:"away"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// fieldDocument mirrors the jsonb layout of the field column.
type fieldDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Location struct {
		Prefix  string `json:"prefix"`
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"location"`
}

type teamDocument struct {
	Name    string           `json:"name"`
	Lineup  string           `json:"lineup"`
	Players []playerDocument `json:"players"`
}

type playerDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Pos  int    `json:"pos"`
}

func marshalField(f match.Field) ([]byte, error) {
	doc := fieldDocument{ID: f.ID, Name: f.Name, ImageURL: f.ImageURL}
	doc.Location.Prefix = f.Location.Prefix
	doc.Location.City = f.Location.City
	doc.Location.Country = f.Location.Country

	raw, err := jsoniter.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal field document: %w", err)
	}
	return raw, nil
}

func marshalTeam(t match.Team) ([]byte, error) {
	doc := teamDocument{
		Name:    t.Name,
		Lineup:  t.Lineup,
		Players: make([]playerDocument, 0, len(t.Players)),
	}
	for _, p := range t.Players {
		doc.Players = append(doc.Players, playerDocument{ID: p.ID, Name: p.Name, Pos: p.Pos})
	}

	raw, err := jsoniter.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal team document: %w", err)
	}
	return raw, nil
}

func matchToRow(item match.Match) (matchTableModel, error) {
	field, err := marshalField(item.Field)
	if err != nil {
		return matchTableModel{}, err
	}
	home, err := marshalTeam(item.Home)
	if err != nil {
		return matchTableModel{}, err
	}
	away, err := marshalTeam(item.Away)
	if err != nil {
		return matchTableModel{}, err
	}

	return matchTableModel{
		ID:        item.ID,
		CreatedBy: item.CreatedBy,
		Name:      item.Name,
		Date:      item.Date.UTC(),
		Field:     field,
		Home:      home,
		Away:      away,
		CreatedAt: item.CreatedAt.UTC(),
		UpdatedAt: item.UpdatedAt.UTC(),
	}, nil
}

func matchFromRow(row matchTableModel) (match.Match, error) {
	var fieldDoc fieldDocument
	if len(row.Field) > 0 {
		if err := jsoniter.Unmarshal(row.Field, &fieldDoc); err != nil {
			return match.Match{}, fmt.Errorf("unmarshal field document id=%s: %w", row.ID, err)
		}
	}

	home, err := teamFromDocument(row.Home, row.ID)
	if err != nil {
		return match.Match{}, err
	}
	away, err := teamFromDocument(row.Away, row.ID)
	if err != nil {
		return match.Match{}, err
	}

	return match.Match{
		ID:        row.ID,
		CreatedBy: row.CreatedBy,
		Name:      row.Name,
		Date:      row.Date.UTC(),
		Field: match.Field{
			ID:       fieldDoc.ID,
			Name:     fieldDoc.Name,
			ImageURL: fieldDoc.ImageURL,
			Location: match.FieldLocation{
				Prefix:  fieldDoc.Location.Prefix,
				City:    fieldDoc.Location.City,
				Country: fieldDoc.Location.Country,
			},
		},
		Home:      home,
		Away:      away,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

func teamFromDocument(raw []byte, matchID string) (match.Team, error) {
	var doc teamDocument
	if len(raw) > 0 {
		if err := jsoniter.Unmarshal(raw, &doc); err != nil {
			return match.Team{}, fmt.Errorf("unmarshal team document id=%s: %w", matchID, err)
		}
	}

	team := match.Team{Name: doc.Name, Lineup: doc.Lineup}
	if len(doc.Players) > 0 {
		team.Players = make([]match.Player, 0, len(doc.Players))
		for _, p := range doc.Players {
			team.Players = append(team.Players, match.Player{ID: p.ID, Name: p.Name, Pos: p.Pos})
		}
	}
	return team, nil
}
