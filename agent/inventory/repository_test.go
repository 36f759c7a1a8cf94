package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFileRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "inventory.json")
	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("NewFileRepository() error = %v", err)
	}

	inv := mustInventory(t,
		Entry{Key: "pizza", Item: MenuItem{Name: "Pizza", Price: 10, Quantity: 7}},
		Entry{Key: "coffee", Item: MenuItem{Name: "Coffee", Price: 2, Quantity: 10}},
	)
	if err := repo.Save(context.Background(), inv); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if keys := loaded.Keys(); len(keys) != 2 || keys[0] != "pizza" {
		t.Fatalf("unexpected keys: %#v", keys)
	}
	if it, _ := loaded.Item("pizza"); it.Quantity != 7 {
		t.Fatalf("pizza quantity = %d, want 7", it.Quantity)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".inventory-*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestFileRepositoryKeepsFileMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inv := mustInventory(t, Entry{Key: "pizza", Item: MenuItem{Name: "Pizza", Price: 10, Quantity: 7}})

	fresh, _ := NewFileRepository(filepath.Join(dir, "fresh.json"))
	if err := fresh.Save(context.Background(), inv); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if mode := fileMode(t, fresh.Path()); mode != 0o644 {
		t.Fatalf("new file mode = %o, want 644", mode)
	}

	sharedPath := filepath.Join(dir, "shared.json")
	if err := os.WriteFile(sharedPath, []byte("{}"), 0o664); err != nil {
		t.Fatalf("write inventory file: %v", err)
	}
	if err := os.Chmod(sharedPath, 0o664); err != nil {
		t.Fatalf("chmod inventory file: %v", err)
	}
	shared, _ := NewFileRepository(sharedPath)
	if err := shared.Save(context.Background(), inv); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if mode := fileMode(t, sharedPath); mode != 0o664 {
		t.Fatalf("replaced file mode = %o, want 664", mode)
	}
}

func fileMode(t *testing.T, path string) os.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.Mode().Perm()
}

func TestFileRepositoryMissingAndCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing, _ := NewFileRepository(filepath.Join(dir, "missing.json"))
	if _, err := missing.Load(context.Background()); !errors.Is(err, ErrInventoryNotFound) {
		t.Fatalf("expected ErrInventoryNotFound, got %v", err)
	}

	corruptPath := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corruptPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	corrupt, _ := NewFileRepository(corruptPath)
	if _, err := corrupt.Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}

	if store := Open(context.Background(), corrupt); store.Available() {
		t.Fatal("expected corrupt file to produce an empty store")
	}
}

func TestNewFileRepositoryRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := NewFileRepository("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestUpstashRepositorySaveAndLoad(t *testing.T) {
	t.Parallel()

	var stored string
	var commands [][]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q", got)
		}
		var cmd []any
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			t.Errorf("decode command: %v", err)
			return
		}
		commands = append(commands, cmd)
		switch cmd[0] {
		case "SET":
			stored = cmd[2].(string)
			fmt.Fprint(w, `{"result":"OK"}`)
		case "GET":
			encoded, _ := json.Marshal(stored)
			fmt.Fprintf(w, `{"result":%s}`, encoded)
		}
	}))
	t.Cleanup(server.Close)

	repo, err := NewUpstashRepository(UpstashConfig{URL: server.URL, Token: "token"}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewUpstashRepository() error = %v", err)
	}

	inv := mustInventory(t, Entry{Key: "pizza", Item: MenuItem{Name: "Pizza", Price: 10, Quantity: 4}})
	if err := repo.Save(context.Background(), inv); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if it, _ := loaded.Item("pizza"); it.Quantity != 4 {
		t.Fatalf("pizza quantity = %d, want 4", it.Quantity)
	}

	if len(commands) != 2 || commands[0][1] != defaultUpstashKey || commands[1][1] != defaultUpstashKey {
		t.Fatalf("unexpected commands: %#v", commands)
	}
}

func TestUpstashRepositoryLoadMissingKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":null}`)
	}))
	t.Cleanup(server.Close)

	repo, err := NewUpstashRepository(UpstashConfig{URL: server.URL, Token: "token"}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewUpstashRepository() error = %v", err)
	}
	if _, err := repo.Load(context.Background()); !errors.Is(err, ErrInventoryNotFound) {
		t.Fatalf("expected ErrInventoryNotFound, got %v", err)
	}
}

func TestUpstashRepositoryHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	repo, _ := NewUpstashRepository(UpstashConfig{URL: server.URL, Token: "token"}, WithHTTPClient(server.Client()))
	if err := repo.Save(context.Background(), New()); err == nil {
		t.Fatal("expected http error")
	}
}

func TestPostgresRowsKeepOrder(t *testing.T) {
	t.Parallel()

	inv := mustInventory(t,
		Entry{Key: "salad", Item: MenuItem{Name: "Salad", Price: 5, Quantity: 2}},
		Entry{Key: "pizza", Item: MenuItem{Name: "Pizza", Price: 10, Quantity: 1}},
	)
	rows := toRows(inv)
	if rows[0].Key != "salad" || rows[0].Position != 0 || rows[1].Position != 1 {
		t.Fatalf("unexpected rows: %#v", rows)
	}

	back, err := fromRows(rows)
	if err != nil {
		t.Fatalf("fromRows() error = %v", err)
	}
	if keys := back.Keys(); keys[0] != "salad" || keys[1] != "pizza" {
		t.Fatalf("unexpected keys: %#v", keys)
	}
}
