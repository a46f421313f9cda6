package match

import (
	"errors"
	"testing"
	"time"
)

func validMatch() Match {
	return Match{
		ID:        "64a1f0c2b7e4d3a9f8c1e101",
		CreatedBy: "64a1f0c2b7e4d3a9f8c1e201",
		Name:      "Pichanga de los viernes",
		Date:      time.Date(2026, 9, 4, 20, 0, 0, 0, time.UTC),
		Home:      Team{Name: "Los Galacticos"},
		Away:      Team{Name: "La Naranja Mecanica"},
	}
}

func TestParseTeamSide(t *testing.T) {
	cases := []struct {
		in   string
		want TeamSide
		ok   bool
	}{
		{"home", TeamSideHome, true},
		{"away", TeamSideAway, true},
		{"bench", "", false},
		{"HOME", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseTeamSide(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseTeamSide(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMatch_AddPlayer_PerTeamPositionUniqueness(t *testing.T) {
	m := validMatch()

	if err := m.AddPlayer(TeamSideHome, Player{ID: "p1", Name: "Rodrigo", Pos: 9}); err != nil {
		t.Fatalf("add first player failed: %v", err)
	}

	err := m.AddPlayer(TeamSideHome, Player{ID: "p2", Name: "Coki", Pos: 9})
	if !errors.Is(err, ErrPositionTaken) {
		t.Fatalf("expected ErrPositionTaken for same team and pos, got %v", err)
	}

	// Occupancy is checked by position alone; the occupant cannot re-add itself.
	err = m.AddPlayer(TeamSideHome, Player{ID: "p1", Name: "Rodrigo", Pos: 9})
	if !errors.Is(err, ErrPositionTaken) {
		t.Fatalf("expected ErrPositionTaken for occupant re-add, got %v", err)
	}

	if err := m.AddPlayer(TeamSideAway, Player{ID: "p2", Name: "Coki", Pos: 9}); err != nil {
		t.Fatalf("expected cross-team pos reuse to succeed, got %v", err)
	}

	if len(m.Home.Players) != 1 || len(m.Away.Players) != 1 {
		t.Fatalf("unexpected roster sizes: home=%d away=%d", len(m.Home.Players), len(m.Away.Players))
	}
}

func TestMatch_AddPlayer_UnknownSide(t *testing.T) {
	m := validMatch()

	if err := m.AddPlayer("bench", Player{ID: "p1", Name: "Rodrigo", Pos: 1}); err == nil {
		t.Fatal("expected error for unknown side")
	}
}

func TestMatch_RemovePlayer_HomeThenAway(t *testing.T) {
	m := validMatch()
	m.Home.Players = []Player{{ID: "p1", Name: "Rodrigo", Pos: 1}}
	m.Away.Players = []Player{{ID: "p1", Name: "Rodrigo", Pos: 1}}

	side, removed := m.RemovePlayer("p1")
	if !removed || side != TeamSideHome {
		t.Fatalf("expected removal from home first, got side=%q removed=%v", side, removed)
	}

	side, removed = m.RemovePlayer("p1")
	if !removed || side != TeamSideAway {
		t.Fatalf("expected removal from away second, got side=%q removed=%v", side, removed)
	}

	if _, removed = m.RemovePlayer("p1"); removed {
		t.Fatal("expected no removal when player is absent")
	}
}

func TestMatch_RemovePlayer_PreservesOrder(t *testing.T) {
	m := validMatch()
	m.Home.Players = []Player{
		{ID: "p1", Pos: 1},
		{ID: "p2", Pos: 2},
		{ID: "p3", Pos: 3},
	}

	if _, removed := m.RemovePlayer("p2"); !removed {
		t.Fatal("expected p2 to be removed")
	}

	if len(m.Home.Players) != 2 || m.Home.Players[0].ID != "p1" || m.Home.Players[1].ID != "p3" {
		t.Fatalf("unexpected roster after removal: %+v", m.Home.Players)
	}
}

func TestMatch_Validate(t *testing.T) {
	if err := validMatch().Validate(); err != nil {
		t.Fatalf("expected valid match, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Match)
	}{
		{"missing id", func(m *Match) { m.ID = "" }},
		{"missing owner", func(m *Match) { m.CreatedBy = "" }},
		{"missing name", func(m *Match) { m.Name = "" }},
		{"zero date", func(m *Match) { m.Date = time.Time{} }},
		{"non positive pos", func(m *Match) {
			m.Home.Players = []Player{{ID: "p1", Pos: 0}}
		}},
		{"duplicate pos", func(m *Match) {
			m.Away.Players = []Player{{ID: "p1", Pos: 4}, {ID: "p2", Pos: 4}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMatch()
			tc.mutate(&m)

			if err := m.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestMatch_Clone_DetachesRosters(t *testing.T) {
	m := validMatch()
	m.Home.Players = []Player{{ID: "p1", Pos: 1}}

	copied := m.Clone()
	copied.Home.Players[0].Name = "changed"
	copied.Home.Players = append(copied.Home.Players, Player{ID: "p2", Pos: 2})

	if m.Home.Players[0].Name == "changed" {
		t.Fatal("expected clone to detach roster entries")
	}
	if len(m.Home.Players) != 1 {
		t.Fatalf("expected original roster unchanged, got %d players", len(m.Home.Players))
	}
}
