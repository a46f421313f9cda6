package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/user"
	"github.com/eormeno12/mipichanga-matches-api/internal/infrastructure/repository/memory"
	"github.com/eormeno12/mipichanga-matches-api/internal/platform/logging"
	"github.com/eormeno12/mipichanga-matches-api/internal/usecase"
)

type staticTokenVerifier struct {
	principals map[string]user.Principal
}

func (v *staticTokenVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := v.principals[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return principal, nil
}

type seqTestIDGenerator struct {
	next int
}

func (g *seqTestIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("64a1f0c2b7e4d3a9f8c1%04x", g.next), nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	repo := memory.NewMatchRepository()
	service := usecase.NewMatchService(repo, &seqTestIDGenerator{}, logging.NewNop())
	handler := NewHandler(service, logging.NewNop())
	verifier := &staticTokenVerifier{principals: map[string]user.Principal{
		"owner-token":  {UserID: "64a1f0c2b7e4d3a9f8c1e201", Email: "owner@example.com"},
		"player-token": {UserID: "64a1f0c2b7e4d3a9f8c1e202", Email: "player@example.com"},
	}}

	return NewRouter(handler, verifier, logging.NewNop(), false, nil)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func createMatchBody() string {
	return `{
		"name": "Sabado FC vs Los Amigos",
		"date": "2026-09-12T20:00:00Z",
		"field": {
			"id": "field-001",
			"name": "La Bombonerita",
			"imageUrl": "https://cdn.mipichanga.pe/fields/bombonerita.png",
			"location": {"prefix": "Av. Arenales 1250", "city": "Lima", "country": "PE"}
		},
		"home": {"name": "Sabado FC", "lineup": "4-4-2"},
		"away": {"name": "Los Amigos", "lineup": "4-3-3"}
	}`
}

func createTestMatch(t *testing.T, router http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/matches", strings.NewReader(createMatchBody()))
	req.Header.Set("Authorization", "Bearer owner-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create match: expected status 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatalf("create match: missing id in response %v", body)
	}
	return id
}

func TestCreateMatch_ReturnsCreatedMatch(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/matches", strings.NewReader(createMatchBody()))
	req.Header.Set("Authorization", "Bearer owner-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["createdBy"].(string); got != "64a1f0c2b7e4d3a9f8c1e201" {
		t.Fatalf("unexpected createdBy: %q", got)
	}
	if got, _ := data["name"].(string); got != "Sabado FC vs Los Amigos" {
		t.Fatalf("unexpected name: %q", got)
	}
	home, _ := data["home"].(map[string]any)
	if got, _ := home["lineup"].(string); got != "4-4-2" {
		t.Fatalf("unexpected home lineup: %q", got)
	}
	players, ok := home["players"].([]any)
	if !ok || len(players) != 0 {
		t.Fatalf("expected empty home players array, got %v", home["players"])
	}
	if _, err := time.Parse(time.RFC3339, data["date"].(string)); err != nil {
		t.Fatalf("date is not RFC 3339: %v", err)
	}
}

func TestCreateMatch_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/matches", strings.NewReader(createMatchBody()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestCreateMatch_RejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/matches", strings.NewReader(`{"name": "x", "surprise": true}`))
	req.Header.Set("Authorization", "Bearer owner-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestGetMatch_PublicRead(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/"+matchID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["id"].(string); got != matchID {
		t.Fatalf("expected id %q, got %q", matchID, got)
	}
}

func TestMatchReads_ExcludeAuditTimestamps(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/matches/"+matchID, nil))
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	for _, key := range []string{"createdAt", "updatedAt"} {
		if _, present := data[key]; present {
			t.Fatalf("expected %q absent from match document, got %v", key, data[key])
		}
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/matches", nil))
	items, _ := decodeEnvelope(t, rec)["data"].([]any)
	if len(items) == 0 {
		t.Fatal("expected at least one match in the list")
	}
	item, _ := items[0].(map[string]any)
	for _, key := range []string{"createdAt", "updatedAt"} {
		if _, present := item[key]; present {
			t.Fatalf("expected %q absent from list items, got %v", key, item[key])
		}
	}
}

func TestGetMatch_InvalidIDFormat(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/not-a-hex-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestGetMatch_NotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/64a1f0c2b7e4d3a9f8c1ffff", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestListMatches_PublicRead(t *testing.T) {
	router := newTestRouter(t)
	createTestMatch(t, router)
	createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	items, _ := decodeEnvelope(t, rec)["data"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(items))
	}
}

func TestUpdateMatch_MergesPartialPayload(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodPut, "/v1/matches/"+matchID, strings.NewReader(`{"name": "Clasico de Barrio"}`))
	req.Header.Set("Authorization", "Bearer owner-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["name"].(string); got != "Clasico de Barrio" {
		t.Fatalf("unexpected name: %q", got)
	}
	field, _ := data["field"].(map[string]any)
	if got, _ := field["name"].(string); got != "La Bombonerita" {
		t.Fatalf("field should be untouched, got name %q", got)
	}
}

func TestUpdateMatch_OtherUserReadsAsNotFound(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodPut, "/v1/matches/"+matchID, strings.NewReader(`{"name": "Hijacked"}`))
	req.Header.Set("Authorization", "Bearer player-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestDeleteMatch_ReportsDeletedCount(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/v1/matches/"+matchID, nil)
	req.Header.Set("Authorization", "Bearer owner-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["deletedCount"].(float64); got != 1 {
		t.Fatalf("expected deletedCount=1, got %v", data["deletedCount"])
	}

	// A repeat delete is permissive and reports zero.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/v1/matches/"+matchID, nil)
	req.Header.Set("Authorization", "Bearer owner-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on repeat delete, got %d", rec.Code)
	}
	data, _ = decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["deletedCount"].(float64); got != 0 {
		t.Fatalf("expected deletedCount=0, got %v", data["deletedCount"])
	}
}

func TestDeleteMatch_OtherUserDeletesNothing(t *testing.T) {
	router := newTestRouter(t)
	matchID := createTestMatch(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/v1/matches/"+matchID, nil)
	req.Header.Set("Authorization", "Bearer player-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["deletedCount"].(float64); got != 0 {
		t.Fatalf("expected deletedCount=0, got %v", data["deletedCount"])
	}

	// The match is still visible to everyone.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/matches/"+matchID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected match to survive, got status %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
