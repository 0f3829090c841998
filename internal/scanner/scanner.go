package scanner

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"curator/internal/catalog"
	"curator/internal/logging"
	"curator/internal/services"
)

// Scanner walks a source directory and registers discovered files in the
// catalog. Scanning is idempotent: a file already cataloged under the same
// hash and path is left untouched.
type Scanner struct {
	store  *catalog.Store
	hasher *Hasher
	logger *slog.Logger
}

// Report summarizes a completed scan.
type Report struct {
	Seen       int
	Registered int
	Skipped    int
	Pruned     int
	Errors     []string
}

// New builds a scanner over the given catalog store.
func New(store *catalog.Store, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		store:  store,
		hasher: NewHasher(),
		logger: logger.With(logging.String(logging.FieldComponent, "scanner")),
	}
}

// hidden files and common editor junk are not worth cataloging.
func skipName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch strings.ToLower(name) {
	case "thumbs.db", "desktop.ini":
		return true
	}
	return strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".tmp") || strings.HasSuffix(name, ".part")
}

// Scan walks root and registers every regular file. Per-file failures are
// collected in the report rather than aborting the walk; only a failure to
// read the root itself is returned as an error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Report, error) {
	report := &Report{}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			report.Errors = append(report.Errors, path+": "+walkErr.Error())
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && skipName(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || skipName(entry.Name()) {
			return nil
		}

		report.Seen++
		if err := s.register(ctx, path, entry, report); err != nil {
			report.Errors = append(report.Errors, path+": "+err.Error())
			s.logger.Warn("failed to register file",
				logging.String("path", path),
				logging.Error(err))
		}
		return nil
	})
	if err != nil {
		return report, services.Wrap(services.ErrTransient, "scan", "walk", "walk source directory", err)
	}

	if err := s.prune(ctx, report); err != nil {
		report.Errors = append(report.Errors, "prune: "+err.Error())
	}

	s.logger.Info("scan complete",
		logging.String("root", root),
		logging.Int("seen", report.Seen),
		logging.Int("registered", report.Registered),
		logging.Int("skipped", report.Skipped),
		logging.Int("pruned", report.Pruned),
		logging.Int("errors", len(report.Errors)))
	return report, nil
}

// prune drops pending items whose source file disappeared since the last
// scan. Reviewed and migrated items keep their history.
func (s *Scanner) prune(ctx context.Context, report *Report) error {
	items, err := s.store.List(ctx, catalog.Filter{Statuses: []catalog.Status{catalog.StatusPending}})
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := os.Stat(item.SourcePath); err == nil || !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		removed, err := s.store.DeletePending(ctx, item.ID)
		if err != nil {
			return err
		}
		if removed {
			report.Pruned++
			s.logger.Debug("pruned missing file",
				logging.String(logging.FieldItemID, item.ID),
				logging.String("path", item.SourcePath))
		}
	}
	return nil
}

func (s *Scanner) register(ctx context.Context, path string, entry fs.DirEntry, report *Report) error {
	info, err := entry.Info()
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(path, info.Size(), info.ModTime())
	if err != nil {
		return err
	}

	item, created, err := s.store.Register(ctx, catalog.NewFile{
		SourcePath: path,
		Filename:   entry.Name(),
		Extension:  strings.ToLower(filepath.Ext(entry.Name())),
		SizeBytes:  info.Size(),
		ModTime:    info.ModTime(),
		Hash:       hash,
	})
	if err != nil {
		return err
	}

	if created {
		report.Registered++
		s.logger.Debug("registered file",
			logging.String(logging.FieldItemID, item.ID),
			logging.String("path", path))
	} else {
		report.Skipped++
	}
	return nil
}
