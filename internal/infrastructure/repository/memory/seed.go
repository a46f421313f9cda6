package memory

import (
	"time"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/match"
)

const seedOwnerID = "64a1f0c2b7e4d3a9f8c1e201"

// SeedMatches returns demo fixtures for local runs without a database.
func SeedMatches() []match.Match {
	now := time.Now().UTC()

	return []match.Match{
		{
			ID:        "64a1f0c2b7e4d3a9f8c1e101",
			CreatedBy: seedOwnerID,
			Name:      "Pichanga de los viernes",
			Date:      now.Add(72 * time.Hour),
			Field: match.Field{
				ID:       "64a1f0c2b7e4d3a9f8c1e301",
				Name:     "Cancha La Bombonerita",
				ImageURL: "https://cdn.mipichanga.app/fields/bombonerita.jpg",
				Location: match.FieldLocation{Prefix: "Av.", City: "Lima", Country: "PE"},
			},
			Home: match.Team{
				Name:   "Los Galacticos",
				Lineup: "https://cdn.mipichanga.app/lineups/4-3-3.png",
				Players: []match.Player{
					{ID: seedOwnerID, Name: "Eduardo", Pos: 1},
				},
			},
			Away:      match.Team{Name: "La Naranja Mecanica", Lineup: "https://cdn.mipichanga.app/lineups/4-4-2.png"},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "64a1f0c2b7e4d3a9f8c1e102",
			CreatedBy: seedOwnerID,
			Name:      "Clasico del barrio",
			Date:      now.Add(7 * 24 * time.Hour),
			Field: match.Field{
				ID:       "64a1f0c2b7e4d3a9f8c1e302",
				Name:     "Complejo San Isidro",
				ImageURL: "https://cdn.mipichanga.app/fields/san-isidro.jpg",
				Location: match.FieldLocation{Prefix: "Jr.", City: "Lima", Country: "PE"},
			},
			Home:      match.Team{Name: "Deportivo Oficina", Lineup: "https://cdn.mipichanga.app/lineups/3-5-2.png"},
			Away:      match.Team{Name: "Atletico Remoto", Lineup: "https://cdn.mipichanga.app/lineups/4-3-3.png"},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Seed loads the demo matches into the repository.
func (r *MatchRepository) Seed() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range SeedMatches() {
		r.items[item.ID] = item.Clone()
	}
}
