package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func addPlayerBody(team string, pos int) string {
	return fmt.Sprintf(`{"team": %q, "name": "Diego", "pos": %d}`, team, pos)
}

func TestAddPlayerToMatch_AnyAuthenticatedUserCanJoin(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/matches/"+matchID+"/players", strings.NewReader(addPlayerBody("home", 10)))
	req.Header.Set("Authorization", "Bearer player-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	home, _ := data["home"].(map[string]any)
	players, _ := home["players"].([]any)
	if len(players) != 1 {
		t.Fatalf("expected 1 home player, got %d", len(players))
	}
	player, _ := players[0].(map[string]any)
	if got, _ := player["id"].(string); got != "64a1f0c2b7e4d3a9f8c1e202" {
		t.Fatalf("player id should come from the token principal, got %q", got)
	}
}

func TestAddPlayerToMatch_OccupiedPositionConflicts(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/matches/"+matchID+"/players", strings.NewReader(addPlayerBody("home", 10)))
	req.Header.Set("Authorization", "Bearer owner-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed join failed with status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/matches/"+matchID+"/players", strings.NewReader(addPlayerBody("home", 10)))
	req.Header.Set("Authorization", "Bearer player-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d body=%s", rec.Code, rec.Body.String())
	}

	// The same position on the other team is free.
	req = httptest.NewRequest(http.MethodPost, "/v1/matches/"+matchID+"/players", strings.NewReader(addPlayerBody("away", 10)))
	req.Header.Set("Authorization", "Bearer player-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for away join, got %d", rec.Code)
	}
}

func TestAddPlayerToMatch_RejectsUnknownTeam(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/matches/"+matchID+"/players", strings.NewReader(`{"team": "bench", "name": "Diego", "pos": 1}`))
	req.Header.Set("Authorization", "Bearer player-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestAddPlayerToMatch_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/matches/"+matchID+"/players", strings.NewReader(addPlayerBody("home", 1)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRemovePlayerFromMatch_RemovesCaller(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/matches/"+matchID+"/players", strings.NewReader(addPlayerBody("away", 7)))
	req.Header.Set("Authorization", "Bearer player-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("join failed with status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/matches/"+matchID+"/players", nil)
	req.Header.Set("Authorization", "Bearer player-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	away, _ := data["away"].(map[string]any)
	players, _ := away["players"].([]any)
	if len(players) != 0 {
		t.Fatalf("expected empty away roster, got %d players", len(players))
	}
}

func TestRemovePlayerFromMatch_NotOnRoster(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/v1/matches/"+matchID+"/players", nil)
	req.Header.Set("Authorization", "Bearer player-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
