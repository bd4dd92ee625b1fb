package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mmlnetwork/mmlpack/internal/auth"
	"github.com/mmlnetwork/mmlpack/internal/postgresutil"
	"github.com/mmlnetwork/mmlpack/internal/postgrestest"
)

// fakeRojo copies the first line of the integration script, which holds
// the build marker, into the output file.
const fakeRojo = `#!/bin/sh
if [ "$1" = "--version" ]; then
	echo "Rojo 7.4.4"
	exit 0
fi
head -n 1 MMLNetworkIntegration.server.lua > "$3"
`

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake build tool is a shell script")
	}
	ctx := context.Background()

	dsn := postgrestest.NewConnectionString(t, ctx)
	if err := postgresutil.Setup(dsn); err != nil {
		t.Fatalf("didn't want %q", err)
	}
	pool, err := postgresutil.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("didn't want %q", err)
	}
	defer pool.Close()
	seed := `
		INSERT INTO game_owners (id, email) VALUES ('aaaaaaaa-0000-0000-0000-000000000000', 'owner@example.com');
		INSERT INTO games (id, name, game_owner_id, server_api_key) VALUES
			('g1', 'Obby World', 'aaaaaaaa-0000-0000-0000-000000000000', 'RBXG-0123456789abcdef0123456789abcdef');
		INSERT INTO ad_containers (id, game_id, name, type, position_x, position_y, position_z) VALUES
			('c1', 'g1', 'Lobby Board', 'DISPLAY', 1, 2, 3);
	`
	if _, err = pool.Exec(ctx, seed); err != nil {
		t.Fatalf("didn't want %q", err)
	}

	tool := filepath.Join(t.TempDir(), "rojo")
	if err = os.WriteFile(tool, []byte(fakeRojo), 0o755); err != nil {
		t.Fatal(err)
	}
	workDir := t.TempDir()
	port := freePort(t)

	cfg, err := parseConfig([]string{
		"MML_POSTGRES_DSN=" + dsn,
		"MML_AUTH_SESSION_SECRET=secret",
		"MML_PACK_TOOL=" + tool,
		"MML_PACK_WORK_DIR=" + workDir,
		"MML_PACK_LIBRARY_DIR=" + t.TempDir(),
		"MML_PACK_PROBE_VERSION=true",
		fmt.Sprintf("MML_SERVER_PORT=%d", port),
	})
	if err != nil {
		t.Fatalf("didn't want %q", err)
	}

	serveCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- serve(serveCtx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("didn't want %q", err)
		}
	})

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	waitForHealth(t, baseURL)

	token, err := auth.New(&cfg.Auth).CreateSession(uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/download/game/g1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("didn't want %q", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want %d (body %s)", resp.StatusCode, http.StatusOK, body)
	}
	if got, want := resp.Header.Get("Content-Disposition"), `attachment; filename="MMLNetwork_Obby_World.rbxm"`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := resp.Header.Get("X-MML-Build-Verified"); got != "true" {
		t.Errorf("got X-MML-Build-Verified %q, want %q", got, "true")
	}
	if got, want := string(body), "-- BUILD_ID: "+resp.Header.Get("X-MML-Build-Id")+"\n"; got != want {
		t.Errorf("got body %q, want %q", got, want)
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d workspaces left, want none", len(entries))
	}
}

func waitForHealth(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("server didn't become healthy")
}
