package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrInventoryNotFound = errors.New("inventory document not found")

// Repository reads and writes the whole inventory document.
type Repository interface {
	Load(ctx context.Context) (*Inventory, error)
	Save(ctx context.Context, inv *Inventory) error
}

// FileRepository stores the inventory as one JSON file, replaced atomically.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) (*FileRepository, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("inventory file path is required")
	}
	return &FileRepository{path: p}, nil
}

func (r *FileRepository) Path() string {
	return r.path
}

func (r *FileRepository) Load(ctx context.Context) (*Inventory, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInventoryNotFound, r.path)
		}
		return nil, fmt.Errorf("read inventory file: %w", err)
	}

	inv := New()
	if err := json.Unmarshal(raw, inv); err != nil {
		return nil, fmt.Errorf("decode inventory file: %w", err)
	}
	return inv, nil
}

func (r *FileRepository) Save(ctx context.Context, inv *Inventory) error {
	if inv == nil {
		return errors.New("inventory is nil")
	}
	payload, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".inventory-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp inventory file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp inventory file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp inventory file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp inventory file: %w", err)
	}
	if err := os.Chmod(tmpName, r.fileMode()); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp inventory file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		cleanup()
		return fmt.Errorf("replace inventory file: %w", err)
	}
	return nil
}

// fileMode keeps the permissions of the file being replaced; a new file gets
// 0644.
func (r *FileRepository) fileMode() os.FileMode {
	if info, err := os.Stat(r.path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
