package match

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPositionTaken signals that the requested roster position is already
	// occupied on that team.
	ErrPositionTaken = errors.New("position is already taken")
)

// TeamSide names one of the two fixed roster slots of a match.
type TeamSide string

const (
	TeamSideHome TeamSide = "home"
	TeamSideAway TeamSide = "away"
)

func ParseTeamSide(v string) (TeamSide, bool) {
	switch TeamSide(v) {
	case TeamSideHome:
		return TeamSideHome, true
	case TeamSideAway:
		return TeamSideAway, true
	default:
		return "", false
	}
}

// Player is a roster entry. ID is the joining user's id; Pos is a positive
// position slot, unique within one team's roster.
type Player struct {
	ID   string
	Name string
	Pos  int
}

// Team is one of the two rosters of a match. Players keeps insertion order.
type Team struct {
	Name    string
	Lineup  string
	Players []Player
}

// PlayerAtPos reports whether some player already occupies pos.
func (t Team) PlayerAtPos(pos int) (Player, bool) {
	for _, p := range t.Players {
		if p.Pos == pos {
			return p, true
		}
	}
	return Player{}, false
}

// IndexOfPlayer returns the index of the first roster entry with the given
// player id, or -1.
func (t Team) IndexOfPlayer(playerID string) int {
	for idx, p := range t.Players {
		if p.ID == playerID {
			return idx
		}
	}
	return -1
}

// FieldLocation describes where the pitch is.
type FieldLocation struct {
	Prefix  string
	City    string
	Country string
}

// Field is immutable reference data about the pitch, supplied wholesale when
// the match is created.
type Field struct {
	ID       string
	Name     string
	ImageURL string
	Location FieldLocation
}

// Match is the aggregate root: a scheduled pickup game with two rosters,
// owned by the user that created it.
type Match struct {
	ID        string
	CreatedBy string
	Name      string
	Date      time.Time
	Field     Field
	Home      Team
	Away      Team
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeamBySide maps a side to the corresponding roster. The pointer aliases the
// match so roster edits through it mutate the aggregate in place.
func (m *Match) TeamBySide(side TeamSide) (*Team, bool) {
	switch side {
	case TeamSideHome:
		return &m.Home, true
	case TeamSideAway:
		return &m.Away, true
	default:
		return nil, false
	}
}

// AddPlayer appends player to the roster of side, enforcing per-team position
// uniqueness. Cross-team position reuse is allowed.
func (m *Match) AddPlayer(side TeamSide, player Player) error {
	team, ok := m.TeamBySide(side)
	if !ok {
		return fmt.Errorf("unknown team side %q", side)
	}

	if _, exists := team.PlayerAtPos(player.Pos); exists {
		return fmt.Errorf("%w: pos=%d team=%s", ErrPositionTaken, player.Pos, side)
	}

	team.Players = append(team.Players, player)
	return nil
}

// RemovePlayer removes the first roster entry matching playerID, searching the
// home roster before the away roster. It reports which side held the player.
func (m *Match) RemovePlayer(playerID string) (TeamSide, bool) {
	side := TeamSideHome
	team := &m.Home
	idx := team.IndexOfPlayer(playerID)
	if idx == -1 {
		side = TeamSideAway
		team = &m.Away
		idx = team.IndexOfPlayer(playerID)
	}
	if idx == -1 {
		return "", false
	}

	team.Players = append(team.Players[:idx], team.Players[idx+1:]...)
	return side, true
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.CreatedBy == "" {
		return fmt.Errorf("match owner is required")
	}
	if m.Name == "" {
		return fmt.Errorf("match name is required")
	}
	if m.Date.IsZero() {
		return fmt.Errorf("match date is required")
	}

	for _, side := range []TeamSide{TeamSideHome, TeamSideAway} {
		team, _ := m.TeamBySide(side)
		seen := make(map[int]string, len(team.Players))
		for _, p := range team.Players {
			if p.Pos <= 0 {
				return fmt.Errorf("player %s on team %s has non-positive pos %d", p.ID, side, p.Pos)
			}
			if otherID, ok := seen[p.Pos]; ok && otherID != p.ID {
				return fmt.Errorf("team %s has duplicate pos %d", side, p.Pos)
			}
			seen[p.Pos] = p.ID
		}
	}

	return nil
}

// Clone returns a deep copy; rosters are the only reference-typed members.
func (m Match) Clone() Match {
	copied := m
	copied.Home.Players = append([]Player(nil), m.Home.Players...)
	copied.Away.Players = append([]Player(nil), m.Away.Players...)
	return copied
}
