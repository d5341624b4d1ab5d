package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandeepkv93/tasklist/internal/model"
)

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSON   Backend = "json"
	BackendMemory Backend = "memory"
)

func ParseBackend(raw string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(raw))) {
	case BackendSQLite, "":
		return BackendSQLite, nil
	case BackendJSON, "file":
		return BackendJSON, nil
	case BackendMemory, "none":
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("storage: unknown backend %q", raw)
	}
}

// Repository persists the whole ordered task list. SaveAll replaces what
// was stored before.
type Repository interface {
	LoadAll(ctx context.Context) ([]model.Task, error)
	SaveAll(ctx context.Context, tasks []model.Task) error
	Close() error
}

// Open returns the repository for backend. The memory backend returns nil,
// which the store treats as "do not persist".
func Open(ctx context.Context, backend Backend, path string) (Repository, error) {
	switch backend {
	case BackendSQLite:
		repo, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case BackendJSON:
		repo, err := NewJSONFileRepository(path)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case BackendMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}
