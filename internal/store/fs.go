package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/buyer-signals/internal/model"
)

const (
	runFilePrefix = "signal-run-"
	lockFileName  = ".signal-run.lock"
)

// FSStore implements Store on a plain directory. Each run lands as two
// sibling artifacts, signal-run-<id>.json and signal-run-<id>.md.
// Ordering comes from each run's generatedAt field, not the filename.
type FSStore struct {
	dir string
}

// NewFS creates an FSStore rooted at dir.
func NewFS(dir string) *FSStore {
	return &FSStore{dir: dir}
}

// Migrate ensures the output directory exists.
func (s *FSStore) Migrate(_ context.Context) error {
	return eris.Wrap(os.MkdirAll(s.dir, 0o755), "fs: create out dir")
}

func (s *FSStore) Close() error { return nil }

// stamp renders a run timestamp as a filesystem-safe id.
func stamp(run *model.Run) string {
	return strings.NewReplacer(":", "-", ".", "-").
		Replace(run.GeneratedAt.UTC().Format("2006-01-02T15:04:05.000Z"))
}

func (s *FSStore) SaveRun(_ context.Context, run *model.Run, summary string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return eris.Wrap(err, "fs: create out dir")
	}

	id := run.ID
	if id == "" {
		id = stamp(run)
	}

	payload, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return eris.Wrap(err, "fs: marshal run")
	}

	jsonPath := filepath.Join(s.dir, runFilePrefix+id+".json")
	if _, statErr := os.Stat(jsonPath); statErr == nil {
		return eris.Errorf("fs: run artifact already exists: %s", jsonPath)
	}
	if err := os.WriteFile(jsonPath, payload, 0o644); err != nil {
		return eris.Wrap(err, "fs: write run json")
	}

	mdPath := filepath.Join(s.dir, runFilePrefix+id+".md")
	if err := os.WriteFile(mdPath, []byte(summary), 0o644); err != nil {
		return eris.Wrap(err, "fs: write run summary")
	}

	zap.L().Info("store: run persisted",
		zap.String("json", jsonPath),
		zap.String("markdown", mdPath),
	)
	return nil
}

// runFiles returns the run JSON filenames present in the out dir.
func (s *FSStore) runFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "fs: read out dir")
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, runFilePrefix) && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// loadAll reads every run, newest first. Unreadable files are skipped
// with a warning so one corrupt artifact never hides the rest.
func (s *FSStore) loadAll() ([]*model.Run, error) {
	names, err := s.runFiles()
	if err != nil {
		return nil, err
	}

	runs := make([]*model.Run, 0, len(names))
	for _, name := range names {
		run, err := s.readRun(name)
		if err != nil {
			zap.L().Warn("store: skipping unreadable run", zap.String("file", name), zap.Error(err))
			continue
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].GeneratedAt.After(runs[j].GeneratedAt)
	})
	return runs, nil
}

func (s *FSStore) readRun(name string) (*model.Run, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, eris.Wrapf(err, "fs: read run %s", name)
	}
	var run model.Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, eris.Wrapf(err, "fs: parse run %s", name)
	}
	run.ID = strings.TrimSuffix(strings.TrimPrefix(name, runFilePrefix), ".json")
	return &run, nil
}

// LatestRun returns the newest readable run. A corrupt baseline must not
// abort a new run, so unreadable artifacts are skipped and an empty
// directory degrades to (nil, nil).
func (s *FSStore) LatestRun(_ context.Context) (*model.Run, error) {
	runs, err := s.loadAll()
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

func (s *FSStore) GetRun(_ context.Context, id string) (*model.Run, error) {
	return s.readRun(runFilePrefix + id + ".json")
}

func (s *FSStore) ListRuns(_ context.Context, limit int) ([]RunInfo, error) {
	runs, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	var infos []RunInfo
	for _, run := range runs {
		if len(infos) >= limit {
			break
		}
		infos = append(infos, RunInfo{
			ID:          run.ID,
			GeneratedAt: run.GeneratedAt,
			Buyers:      len(run.Rows),
		})
	}
	return infos, nil
}

// Lock takes the run lease via an O_EXCL lock file. A held lock means
// another run is in flight; that is an operator error, not a per-buyer
// degradation, so it surfaces as an error.
func (s *FSStore) Lock(_ context.Context) (func(), error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "fs: create out dir")
	}
	path := filepath.Join(s.dir, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, eris.Errorf("fs: another run holds the lock: %s", path)
		}
		return nil, eris.Wrap(err, "fs: acquire run lock")
	}
	_ = f.Close()

	return func() {
		if rmErr := os.Remove(path); rmErr != nil {
			zap.L().Warn("store: failed to release run lock", zap.Error(rmErr))
		}
	}, nil
}
