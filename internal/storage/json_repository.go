package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sandeepkv93/tasklist/internal/model"
)

// JSONFileRepository keeps the task list as a JSON array in a single file.
// Writes go to a temp file that is renamed into place.
type JSONFileRepository struct {
	mu   sync.Mutex
	path string
}

func NewJSONFileRepository(path string) (*JSONFileRepository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage: empty json path")
	}
	return &JSONFileRepository{path: path}, nil
}

func (r *JSONFileRepository) Path() string {
	return r.path
}

func (r *JSONFileRepository) LoadAll(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Task{}, nil
		}
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return []model.Task{}, nil
	}
	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *JSONFileRepository) SaveAll(ctx context.Context, tasks []model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(r.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	payload, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return os.Rename(tmp, r.path)
}

func (r *JSONFileRepository) Close() error {
	return nil
}
