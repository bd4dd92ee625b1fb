package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/swaggo/swag"

	"github.com/mmlnetwork/mmlpack/internal/auth"
	"github.com/mmlnetwork/mmlpack/internal/game"
	"github.com/mmlnetwork/mmlpack/internal/pack"
)

var (
	ownerID        = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	otherOwnerID   = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")
	unknownOwnerID = uuid.MustParse("cccccccc-0000-0000-0000-000000000000")
)

const testAPIKey = "RBXG-0123456789abcdef0123456789abcdef"

// FakeDatabase is an in-memory game.Database.
type FakeDatabase struct {
	Owners []*game.Owner
	Games  []*game.Game
}

func (d *FakeDatabase) GetOwner(_ context.Context, id uuid.UUID) (*game.Owner, error) {
	for _, o := range d.Owners {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, game.ErrOwnerNotFound
}

func (d *FakeDatabase) GetOwnedGame(_ context.Context, ownerID uuid.UUID, gameID string) (*game.Game, error) {
	for _, g := range d.Games {
		if g.ID == gameID && g.OwnerID == ownerID {
			return g, nil
		}
	}
	return nil, game.ErrGameNotFound
}

func (d *FakeDatabase) GetGame(_ context.Context, gameID string) (*game.Game, error) {
	for _, g := range d.Games {
		if g.ID == gameID {
			return g, nil
		}
	}
	return nil, game.ErrGameNotFound
}

func (d *FakeDatabase) GetGameByAPIKey(_ context.Context, apiKey string) (*game.Game, error) {
	for _, g := range d.Games {
		if g.ServerAPIKey != "" && g.ServerAPIKey == apiKey {
			return g, nil
		}
	}
	return nil, game.ErrGameNotFound
}

func (d *FakeDatabase) GetOwnedContainer(_ context.Context, ownerID uuid.UUID, containerID string) (*game.Container, *game.Game, error) {
	for _, g := range d.Games {
		if g.OwnerID != ownerID {
			continue
		}
		for i := range g.Containers {
			if g.Containers[i].ID == containerID {
				return &g.Containers[i], g, nil
			}
		}
	}
	return nil, nil, game.ErrContainerNotFound
}

func (d *FakeDatabase) GetContainer(_ context.Context, gameID, containerID string) (*game.Container, error) {
	for _, g := range d.Games {
		if g.ID != gameID {
			continue
		}
		for i := range g.Containers {
			if g.Containers[i].ID == containerID {
				return &g.Containers[i], nil
			}
		}
	}
	return nil, game.ErrContainerNotFound
}

func (d *FakeDatabase) SetServerAPIKey(ctx context.Context, ownerID uuid.UUID, gameID, apiKey string) (*game.Game, error) {
	g, err := d.GetOwnedGame(ctx, ownerID, gameID)
	if err != nil {
		return nil, err
	}
	g.ServerAPIKey = apiKey
	return g, nil
}

type StubPackager struct {
	Artifact *pack.Artifact
	Err      error
	Games    []*game.Game
	Types    []string
}

func (p *StubPackager) Generate(_ context.Context, g *game.Game) (*pack.Artifact, error) {
	p.Games = append(p.Games, g)
	return p.Artifact, p.Err
}

func (p *StubPackager) Bootstrap(_ context.Context, g *game.Game) (*pack.Artifact, error) {
	p.Games = append(p.Games, g)
	if p.Err != nil {
		return nil, p.Err
	}
	return &pack.Artifact{BuildID: "b1", Filename: "MML_Bootstrap_" + g.ID + ".rbxmx", ContentType: "application/xml", Data: []byte("<roblox/>"), Verified: true}, nil
}

func (p *StubPackager) Prebuilt(_ context.Context, containerType string) (*pack.Artifact, error) {
	p.Types = append(p.Types, containerType)
	if p.Err != nil {
		return nil, p.Err
	}
	return &pack.Artifact{
		BuildID:     "1712345678901_cd34ef",
		Filename:    "MMLContainer_" + containerType + ".rbxmx",
		ContentType: "application/octet-stream",
		Data:        []byte("<roblox>BUILD_ID: 1712345678901_cd34ef</roblox>"),
		Verified:    true,
		Attempts:    1,
	}, nil
}

type testEnv struct {
	handler  http.Handler
	db       *FakeDatabase
	packager *StubPackager
	tokens   *auth.Tokens
	logs     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := &FakeDatabase{
		Owners: []*game.Owner{
			{ID: ownerID, Email: "owner@example.com"},
			{ID: otherOwnerID, Email: "other@example.com"},
		},
		Games: []*game.Game{
			{
				ID: "g1", Name: "My Game!", OwnerID: ownerID, ServerAPIKey: testAPIKey,
				Containers: []game.Container{{ID: "c1", GameID: "g1", Name: "Sign A", Type: game.ContainerTypeDisplay}},
			},
			{ID: "g2", Name: "No Key", OwnerID: ownerID},
		},
	}
	packager := &StubPackager{
		Artifact: &pack.Artifact{
			BuildID:     "1712345678901_ab12cd",
			Filename:    "MMLNetwork_My_Game_.rbxm",
			ContentType: "application/octet-stream",
			Data:        []byte("PKG BUILD_ID: 1712345678901_ab12cd"),
			Verified:    true,
			Attempts:    1,
		},
	}
	tokens := auth.New(&auth.Config{SessionSecret: "session-secret", DownloadSecret: "download-secret"})
	logs := &bytes.Buffer{}

	h := NewHandler(slog.New(slog.NewTextHandler(logs, nil)), &Deps{
		Database: db,
		Packager: packager,
		Tokens:   tokens,
	})
	return &testEnv{handler: h, db: db, packager: packager, tokens: tokens, logs: logs}
}

func (e *testEnv) sessionToken(t *testing.T, id uuid.UUID) string {
	t.Helper()
	s, err := e.tokens.CreateSession(id, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func (e *testEnv) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("got status %d, want %d (body %s)", w.Code, status, w.Body)
	}
	var body apiError
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("didn't want %q", err)
	}
	if body.Error != msg {
		t.Fatalf("got error %q, want %q", body.Error, msg)
	}
}

func TestGetHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if got, want := strings.TrimSpace(w.Body.String()), `{"status":"ok"}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestDownloadGame(t *testing.T) {
	t.Run("delivers the package", func(t *testing.T) {
		env := newTestEnv(t)
		r := httptest.NewRequest(http.MethodGet, "/download/game/g1", nil)
		r.Header.Set("Authorization", "Bearer "+env.sessionToken(t, ownerID))

		w := env.do(r)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d (body %s)", w.Code, http.StatusOK, w.Body)
		}
		wantHeaders := map[string]string{
			"Content-Type":         "application/octet-stream",
			"Content-Disposition":  `attachment; filename="MMLNetwork_My_Game_.rbxm"`,
			"Content-Length":       "34",
			"Cache-Control":        "no-cache, no-store, must-revalidate",
			"Pragma":               "no-cache",
			"Expires":              "0",
			"X-MML-Build-Id":       "1712345678901_ab12cd",
			"X-MML-Build-Verified": "true",
		}
		for k, want := range wantHeaders {
			if got := w.Header().Get(k); got != want {
				t.Errorf("got %s %q, want %q", k, got, want)
			}
		}
		if got, want := w.Body.String(), "PKG BUILD_ID: 1712345678901_ab12cd"; got != want {
			t.Errorf("got body %q, want %q", got, want)
		}
	})

	t.Run("delivers an unverified package", func(t *testing.T) {
		env := newTestEnv(t)
		env.packager.Artifact.Verified = false
		r := httptest.NewRequest(http.MethodGet, "/download/game/g1", nil)
		r.Header.Set("Authorization", "Bearer "+env.sessionToken(t, ownerID))

		w := env.do(r)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("X-MML-Build-Verified"); got != "false" {
			t.Fatalf("got X-MML-Build-Verified %q, want %q", got, "false")
		}
	})

	tests := []struct {
		name       string
		path       string
		header     func(t *testing.T, env *testEnv) string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing token",
			path:       "/download/game/g1",
			header:     func(*testing.T, *testEnv) string { return "" },
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthorized",
		},
		{
			name:       "invalid token",
			path:       "/download/game/g1",
			header:     func(*testing.T, *testEnv) string { return "Bearer nope" },
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid or expired token",
		},
		{
			name:       "unknown owner",
			path:       "/download/game/g1",
			header:     func(t *testing.T, env *testEnv) string { return "Bearer " + env.sessionToken(t, unknownOwnerID) },
			wantStatus: http.StatusNotFound,
			wantError:  "owner not found",
		},
		{
			name:       "game of another owner",
			path:       "/download/game/g1",
			header:     func(t *testing.T, env *testEnv) string { return "Bearer " + env.sessionToken(t, otherOwnerID) },
			wantStatus: http.StatusNotFound,
			wantError:  "game not found or unauthorized",
		},
		{
			name:       "missing game",
			path:       "/download/game/missing",
			header:     func(t *testing.T, env *testEnv) string { return "Bearer " + env.sessionToken(t, ownerID) },
			wantStatus: http.StatusNotFound,
			wantError:  "game not found or unauthorized",
		},
		{
			name:       "game without api key",
			path:       "/download/game/g2",
			header:     func(t *testing.T, env *testEnv) string { return "Bearer " + env.sessionToken(t, ownerID) },
			wantStatus: http.StatusBadRequest,
			wantError:  "game does not have an API key yet; generate an API key first",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if h := tt.header(t, env); h != "" {
				r.Header.Set("Authorization", h)
			}

			w := env.do(r)

			assertError(t, w, tt.wantStatus, tt.wantError)
			if len(env.packager.Games) != 0 {
				t.Fatal("build started for a rejected request")
			}
		})
	}

	t.Run("hides build failures", func(t *testing.T) {
		env := newTestEnv(t)
		env.packager.Err = errors.New("rojo exploded at /tmp/secret/path")
		r := httptest.NewRequest(http.MethodGet, "/download/game/g1", nil)
		r.Header.Set("Authorization", "Bearer "+env.sessionToken(t, ownerID))

		w := env.do(r)

		if strings.Contains(w.Body.String(), "rojo exploded") {
			t.Fatalf("body leaks the internal error: %s", w.Body)
		}
		assertError(t, w, http.StatusInternalServerError, "failed to generate game package")
		if !strings.Contains(env.logs.String(), "rojo exploded") {
			t.Fatal("internal error wasn't logged")
		}
	})
}

func TestDownloadContainer(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/download/container/c1", nil)
	r.Header.Set("Authorization", "Bearer "+env.sessionToken(t, ownerID))
	w := env.do(r)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d (body %s)", w.Code, http.StatusOK, w.Body)
	}
	if got, want := w.Header().Get("Content-Disposition"), `attachment; filename="MMLContainer_Sign_A.rbxmx"`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := w.Header().Get("Content-Type"); got != "application/xml" {
		t.Fatalf("got content type %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/download/container/c1", nil)
	r.Header.Set("Authorization", "Bearer "+env.sessionToken(t, otherOwnerID))
	assertError(t, env.do(r), http.StatusNotFound, "container not found or unauthorized")
}

func TestDownloadPrebuilt(t *testing.T) {
	t.Run("delivers the model", func(t *testing.T) {
		env := newTestEnv(t)
		r := httptest.NewRequest(http.MethodGet, "/download/prebuilt/display", nil)
		r.Header.Set("Authorization", "Bearer "+env.sessionToken(t, ownerID))

		w := env.do(r)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d (body %s)", w.Code, http.StatusOK, w.Body)
		}
		if got, want := env.packager.Types, []string{"DISPLAY"}; len(got) != 1 || got[0] != want[0] {
			t.Fatalf("got types %v, want %v", got, want)
		}
		wantHeaders := map[string]string{
			"Content-Type":         "application/octet-stream",
			"Content-Disposition":  `attachment; filename="MMLContainer_DISPLAY.rbxmx"`,
			"Cache-Control":        "no-cache, no-store, must-revalidate",
			"X-MML-Build-Id":       "1712345678901_cd34ef",
			"X-MML-Build-Verified": "true",
		}
		for k, want := range wantHeaders {
			if got := w.Header().Get(k); got != want {
				t.Errorf("got %s %q, want %q", k, got, want)
			}
		}
	})

	tests := []struct {
		name       string
		path       string
		header     func(t *testing.T, env *testEnv) string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing authorization",
			path:       "/download/prebuilt/NPC",
			header:     func(*testing.T, *testEnv) string { return "" },
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthorized",
		},
		{
			name:       "unknown owner",
			path:       "/download/prebuilt/NPC",
			header:     func(t *testing.T, env *testEnv) string { return "Bearer " + env.sessionToken(t, unknownOwnerID) },
			wantStatus: http.StatusNotFound,
			wantError:  "owner not found",
		},
		{
			name:       "unknown type",
			path:       "/download/prebuilt/billboard",
			header:     func(t *testing.T, env *testEnv) string { return "Bearer " + env.sessionToken(t, ownerID) },
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid container type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if h := tt.header(t, env); h != "" {
				r.Header.Set("Authorization", h)
			}

			w := env.do(r)

			assertError(t, w, tt.wantStatus, tt.wantError)
			if len(env.packager.Types) != 0 {
				t.Fatal("build started for a rejected request")
			}
		})
	}

	t.Run("hides build failures", func(t *testing.T) {
		env := newTestEnv(t)
		env.packager.Err = errors.New("rojo exploded at /tmp/secret/path")
		r := httptest.NewRequest(http.MethodGet, "/download/prebuilt/MINIGAME", nil)
		r.Header.Set("Authorization", "Bearer "+env.sessionToken(t, ownerID))

		w := env.do(r)

		if strings.Contains(w.Body.String(), "rojo exploded") {
			t.Fatalf("body leaks the internal error: %s", w.Body)
		}
		assertError(t, w, http.StatusInternalServerError, "failed to generate prebuilt container")
	})
}

func TestIssueAPIKey(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodPost, "/games/g2/api-key", nil)
	r.Header.Set("Authorization", "Bearer "+env.sessionToken(t, ownerID))
	w := env.do(r)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d (body %s)", w.Code, http.StatusOK, w.Body)
	}
	var resp issueAPIKeyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !game.IsAPIKey(resp.APIKey) || len(resp.APIKey) != len(testAPIKey) {
		t.Fatalf("got api key %q", resp.APIKey)
	}
	if got := env.db.Games[1].ServerAPIKey; got != resp.APIKey {
		t.Fatalf("stored %q, returned %q", got, resp.APIKey)
	}

	r = httptest.NewRequest(http.MethodPost, "/games/g1/api-key", nil)
	r.Header.Set("Authorization", "Bearer "+env.sessionToken(t, otherOwnerID))
	assertError(t, env.do(r), http.StatusNotFound, "game not found or unauthorized")
}

func (e *testEnv) createDownloadToken(t *testing.T, body string) (int, createDownloadTokenResponse, *httptest.ResponseRecorder) {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/v1/builds/token", strings.NewReader(body))
	r.Header.Set("X-API-Key", testAPIKey)
	w := e.do(r)
	var resp createDownloadTokenResponse
	if w.Code == http.StatusOK {
		if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp); err != nil {
			t.Fatal(err)
		}
	}
	return w.Code, resp, w
}

func TestCreateDownloadToken(t *testing.T) {
	t.Run("defaults to bootstrap", func(t *testing.T) {
		env := newTestEnv(t)
		status, resp, w := env.createDownloadToken(t, "")
		if status != http.StatusOK {
			t.Fatalf("got status %d, want %d (body %s)", status, http.StatusOK, w.Body)
		}

		d, err := env.tokens.ParseDownload(resp.Token)
		if err != nil {
			t.Fatalf("didn't want %q", err)
		}
		if d.Type != auth.DownloadTypeBootstrap || d.GameID != "g1" {
			t.Fatalf("got %+v", d)
		}
		if exp := time.Unix(resp.Exp, 0); time.Until(exp) > 10*time.Minute || time.Until(exp) < 9*time.Minute {
			t.Fatalf("got exp %v", exp)
		}
	})

	t.Run("requires a container id", func(t *testing.T) {
		env := newTestEnv(t)
		_, _, w := env.createDownloadToken(t, `{"type":"container"}`)
		assertError(t, w, http.StatusBadRequest, "containerId required")
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		env := newTestEnv(t)
		status, _, _ := env.createDownloadToken(t, `{"type":"everything"}`)
		if status != http.StatusBadRequest {
			t.Fatalf("got status %d, want %d", status, http.StatusBadRequest)
		}
	})

	t.Run("rejects a malformed api key", func(t *testing.T) {
		env := newTestEnv(t)
		r := httptest.NewRequest(http.MethodPost, "/v1/builds/token", nil)
		r.Header.Set("X-API-Key", "0123")
		assertError(t, env.do(r), http.StatusUnauthorized, "unauthorized")
	})

	t.Run("rejects an unknown api key", func(t *testing.T) {
		env := newTestEnv(t)
		r := httptest.NewRequest(http.MethodPost, "/v1/builds/token", nil)
		r.Header.Set("X-API-Key", "RBXG-ffff")
		assertError(t, env.do(r), http.StatusUnauthorized, "unauthorized")
	})
}

func TestDownloadBootstrap(t *testing.T) {
	t.Run("accepts a bootstrap token", func(t *testing.T) {
		env := newTestEnv(t)
		_, resp, _ := env.createDownloadToken(t, `{"type":"bootstrap"}`)

		w := env.do(httptest.NewRequest(http.MethodGet, "/v1/builds/bootstrap?token="+resp.Token, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d (body %s)", w.Code, http.StatusOK, w.Body)
		}
		if got, want := w.Header().Get("Content-Disposition"), `attachment; filename="MML_Bootstrap_g1.rbxmx"`; got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})

	t.Run("accepts an api key", func(t *testing.T) {
		env := newTestEnv(t)
		r := httptest.NewRequest(http.MethodGet, "/v1/builds/bootstrap", nil)
		r.Header.Set("X-API-Key", testAPIKey)
		if w := env.do(r); w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d (body %s)", w.Code, http.StatusOK, w.Body)
		}
	})

	t.Run("rejects a container token", func(t *testing.T) {
		env := newTestEnv(t)
		_, resp, _ := env.createDownloadToken(t, `{"type":"container","containerId":"c1"}`)

		w := env.do(httptest.NewRequest(http.MethodGet, "/v1/builds/bootstrap?token="+resp.Token, nil))
		assertError(t, w, http.StatusUnauthorized, "invalid or expired token")
	})

	t.Run("rejects no credentials", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(httptest.NewRequest(http.MethodGet, "/v1/builds/bootstrap", nil))
		assertError(t, w, http.StatusUnauthorized, "unauthorized")
	})
}

func TestDownloadContainerByToken(t *testing.T) {
	t.Run("accepts a matching container token", func(t *testing.T) {
		env := newTestEnv(t)
		_, resp, _ := env.createDownloadToken(t, `{"type":"container","containerId":"c1"}`)

		w := env.do(httptest.NewRequest(http.MethodGet, "/v1/builds/container?containerId=c1&token="+resp.Token, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d (body %s)", w.Code, http.StatusOK, w.Body)
		}
		body, _ := io.ReadAll(w.Body)
		if !bytes.Contains(body, []byte("MMLMetadata")) {
			t.Fatalf("got body %s", body)
		}
	})

	t.Run("rejects a token for another container", func(t *testing.T) {
		env := newTestEnv(t)
		_, resp, _ := env.createDownloadToken(t, `{"type":"container","containerId":"c1"}`)

		w := env.do(httptest.NewRequest(http.MethodGet, "/v1/builds/container?containerId=c2&token="+resp.Token, nil))
		assertError(t, w, http.StatusUnauthorized, "invalid or expired token")
	})

	t.Run("requires a container id", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(httptest.NewRequest(http.MethodGet, "/v1/builds/container", nil))
		assertError(t, w, http.StatusBadRequest, "containerId required")
	})

	t.Run("doesn't find a container of another game", func(t *testing.T) {
		env := newTestEnv(t)
		r := httptest.NewRequest(http.MethodGet, "/v1/builds/container?containerId=missing", nil)
		r.Header.Set("X-API-Key", testAPIKey)
		assertError(t, env.do(r), http.StatusNotFound, "container not found or unauthorized")
	})
}

func TestSwagger(t *testing.T) {
	for _, development := range []bool{true, false} {
		h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), &Deps{
			Database:    &FakeDatabase{},
			Packager:    &StubPackager{},
			Tokens:      auth.New(&auth.Config{SessionSecret: "s"}),
			Development: development,
		})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

		want := http.StatusNotFound
		if development {
			want = http.StatusOK
		}
		if w.Code != want {
			t.Errorf("development %v: got status %d, want %d", development, w.Code, want)
		}
	}
}

func TestSwaggerDocumentsRoutes(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("didn't want %q", err)
	}

	var spec struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err = json.Unmarshal([]byte(doc), &spec); err != nil {
		t.Fatalf("didn't want %q", err)
	}

	for _, path := range []string{
		"/health",
		"/download/game/{gameId}",
		"/download/container/{containerId}",
		"/download/prebuilt/{type}",
		"/games/{gameId}/api-key",
		"/v1/builds/token",
		"/v1/builds/bootstrap",
		"/v1/builds/container",
	} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("swagger doc doesn't document %s", path)
		}
	}
}
