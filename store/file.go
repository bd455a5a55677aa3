package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	PortfolioFile = "sim-state.json"
	RiskFile      = "risk-state.json"
)

// File stores the snapshot as two JSON documents in Dir. Each write goes to
// a temp file and is renamed into place, so a crash never leaves a torn file.
type File struct {
	Dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &File{Dir: dir}, nil
}

func (f *File) Load(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	if err := readJSON(filepath.Join(f.Dir, PortfolioFile), &s.Portfolio); err != nil {
		return Snapshot{}, err
	}
	// A missing risk file only means the governor starts a fresh day.
	if err := readJSON(filepath.Join(f.Dir, RiskFile), &s.Risk); err != nil && !errors.Is(err, ErrNoState) {
		return Snapshot{}, err
	}
	return s, nil
}

// Save stages both documents as temp files and only then renames them into
// place, so a failed write leaves the previous snapshot whole. A crash
// between the two renames can still leave the portfolio one tick ahead of
// the risk state.
func (f *File) Save(ctx context.Context, s Snapshot) error {
	docs := []struct {
		path string
		v    any
	}{
		{filepath.Join(f.Dir, PortfolioFile), s.Portfolio},
		{filepath.Join(f.Dir, RiskFile), s.Risk},
	}

	var staged []string
	for _, d := range docs {
		tmp, err := stageJSON(d.path, d.v)
		if err != nil {
			for _, t := range staged {
				os.Remove(t)
			}
			return err
		}
		staged = append(staged, tmp)
	}
	for i, d := range docs {
		if err := os.Rename(staged[i], d.path); err != nil {
			return fmt.Errorf("rename %s: %w", filepath.Base(d.path), err)
		}
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNoState
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// stageJSON writes v next to path and returns the temp file's name.
func stageJSON(path string, v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return tmp, nil
}
