// Package policy decides which files of a resolved tree are fetched, in what
// order, and whether a repository attempt counts as successful.
package policy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/depotkit/depotkit/internal/logger"
	pkgerrors "github.com/depotkit/depotkit/pkg/errors"
	"github.com/depotkit/depotkit/pkg/fsutil"
	"github.com/depotkit/depotkit/pkg/keyvdf"
	"github.com/depotkit/depotkit/pkg/mirror"
	"github.com/depotkit/depotkit/pkg/model"
)

// Mode is the content-selection policy.
type Mode string

const (
	// ModeStrict requires a valid key file before trusting a repository's
	// data; only key files and manifests are fetched.
	ModeStrict Mode = "strict"
	// ModePermissive downloads every file in the tree regardless of key
	// presence.
	ModePermissive Mode = "permissive"
)

// Key file basenames, matched case-insensitively. key.vdf is preferred.
var keyFileNames = []string{"key.vdf", "config.vdf"}

// IsKeyFileName reports whether name is a key-file basename in any case
// variant.
func IsKeyFileName(name string) bool {
	for _, k := range keyFileNames {
		if strings.EqualFold(name, k) {
			return true
		}
	}
	return false
}

// Result is the outcome of applying a policy to one repository's tree.
type Result struct {
	Keys *model.DepotKeySet
	// FilesTouched reports whether any usable file was written to (or was
	// already present in) the processing directory. Files cached on disk
	// from an earlier run count the same as freshly fetched ones, which
	// keeps re-runs against a populated directory idempotent.
	FilesTouched bool
}

// Successful applies the per-mode success criterion.
func (r Result) Successful(mode Mode) bool {
	if mode == ModeStrict {
		return r.Keys.Len() > 0 && r.FilesTouched
	}
	return r.FilesTouched
}

// Engine fetches the files a policy selects through the mirror chain.
type Engine struct {
	fetcher mirror.Fetcher
}

// NewEngine creates a policy engine on top of a mirror fetcher.
func NewEngine(fetcher mirror.Fetcher) *Engine {
	return &Engine{fetcher: fetcher}
}

// Apply walks the tree per the given mode, fetching into dir. It returns the
// deduplicated keys collected for this repository and whether any files were
// touched; the caller derives success via Result.Successful.
func (e *Engine) Apply(ctx context.Context, mode Mode, entries []model.TreeEntry, res *model.BranchResolution, repo model.RepositoryDescriptor, dir string) (Result, error) {
	if err := os.MkdirAll(dir, fsutil.DirModeDefault); err != nil {
		return Result{}, pkgerrors.Wrap(err, "could not create processing dir")
	}
	result := Result{Keys: model.NewDepotKeySet()}

	var err error
	switch mode {
	case ModePermissive:
		err = e.applyPermissive(ctx, entries, res, repo, dir, &result)
	default:
		err = e.applyStrict(ctx, entries, res, repo, dir, &result)
	}
	if err != nil {
		return Result{Keys: model.NewDepotKeySet()}, err
	}
	return result, nil
}

// applyStrict fetches the best key file (key.vdf preferred, config.vdf as
// fallback) and every manifest blob.
func (e *Engine) applyStrict(ctx context.Context, entries []model.TreeEntry, res *model.BranchResolution, repo model.RepositoryDescriptor, dir string, result *Result) error {
	for _, name := range keyFileNames {
		entry, ok := findKeyFile(entries, name)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		keys, touched, err := e.processKeyFile(ctx, entry, res, repo, dir)
		if err != nil {
			return err
		}
		result.Keys.AddAll(keys)
		result.FilesTouched = result.FilesTouched || touched
		if len(keys) > 0 {
			// key.vdf yielded keys; config.vdf is never fetched.
			break
		}
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Type != model.EntryBlob || !strings.HasSuffix(entry.Path, model.ManifestSuffix) {
			continue
		}
		touched, err := e.fetchToDisk(ctx, entry, res, repo, dir)
		if err != nil {
			return err
		}
		result.FilesTouched = result.FilesTouched || touched
	}
	return nil
}

// applyPermissive fetches every blob in the tree and opportunistically
// parses every .vdf file for keys.
func (e *Engine) applyPermissive(ctx context.Context, entries []model.TreeEntry, res *model.BranchResolution, repo model.RepositoryDescriptor, dir string, result *Result) error {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Type != model.EntryBlob {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Path), ".vdf") {
			keys, touched, err := e.processKeyFile(ctx, entry, res, repo, dir)
			if err != nil {
				return err
			}
			result.Keys.AddAll(keys)
			result.FilesTouched = result.FilesTouched || touched
			continue
		}
		touched, err := e.fetchToDisk(ctx, entry, res, repo, dir)
		if err != nil {
			return err
		}
		result.FilesTouched = result.FilesTouched || touched
	}
	return nil
}

// processKeyFile obtains a key file's bytes (from disk when cached, through
// the mirrors otherwise), persists fresh downloads, and extracts keys. A
// parse failure yields zero keys without failing the attempt.
func (e *Engine) processKeyFile(ctx context.Context, entry model.TreeEntry, res *model.BranchResolution, repo model.RepositoryDescriptor, dir string) ([]model.DepotKey, bool, error) {
	savePath, ok := localPath(dir, entry.Path)
	if !ok {
		return nil, false, nil
	}

	var data []byte
	if cached, err := os.ReadFile(savePath); err == nil {
		logger.Debug("key file read from disk", logger.Fields{"path": entry.Path})
		data = cached
	} else {
		fetched, err := e.fetcher.Fetch(ctx, repo.Name, res.CommitSHA, entry.Path)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrNotFound) {
				logger.Warn("key file not available", logger.Fields{"repo": repo.Name, "path": entry.Path})
				return nil, false, nil
			}
			return nil, false, err
		}
		if err := writeFile(savePath, fetched); err != nil {
			return nil, false, err
		}
		logger.Info("key download successful", logger.Fields{"path": entry.Path})
		data = fetched
	}

	keys, err := keyvdf.Extract(data)
	if err != nil {
		logger.Error("key file parse failed", logger.Fields{"path": entry.Path, "error": err.Error()})
		return nil, true, nil
	}
	return keys, true, nil
}

// fetchToDisk downloads one blob, skipping files already present. It reports
// whether the file is now on disk; an exhausted mirror chain is logged and
// skipped rather than failing the attempt.
func (e *Engine) fetchToDisk(ctx context.Context, entry model.TreeEntry, res *model.BranchResolution, repo model.RepositoryDescriptor, dir string) (bool, error) {
	savePath, ok := localPath(dir, entry.Path)
	if !ok {
		return false, nil
	}
	if _, err := os.Stat(savePath); err == nil {
		logger.Debug("already on disk, skipping", logger.Fields{"path": entry.Path})
		return true, nil
	}

	data, err := e.fetcher.Fetch(ctx, repo.Name, res.CommitSHA, entry.Path)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			logger.Warn("failed to obtain file", logger.Fields{"repo": repo.Name, "path": entry.Path})
			return false, nil
		}
		return false, err
	}
	if err := writeFile(savePath, data); err != nil {
		return false, err
	}
	logger.Info("download successful", logger.Fields{"path": entry.Path})
	return true, nil
}

// localPath maps a tree path into the processing directory, rejecting
// entries that would escape it.
func localPath(dir, treePath string) (string, bool) {
	clean := filepath.FromSlash(treePath)
	if clean == "" || !filepath.IsLocal(clean) {
		logger.Warn("skipping unsafe tree path", logger.Fields{"path": treePath})
		return "", false
	}
	return filepath.Join(dir, clean), true
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirModeDefault); err != nil {
		return pkgerrors.Wrap(err, "could not create directory")
	}
	if err := os.WriteFile(path, data, fsutil.FileModeDefault); err != nil {
		return pkgerrors.Wrap(err, "could not write file")
	}
	return nil
}

// findKeyFile locates a blob whose basename matches name case-insensitively.
func findKeyFile(entries []model.TreeEntry, name string) (model.TreeEntry, bool) {
	for _, entry := range entries {
		if entry.Type != model.EntryBlob {
			continue
		}
		if strings.EqualFold(filepath.Base(filepath.FromSlash(entry.Path)), name) {
			return entry, true
		}
	}
	return model.TreeEntry{}, false
}
