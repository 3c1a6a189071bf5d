package assembler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mholt/archives"

	"github.com/depotkit/depotkit/internal/logger"
	pkgerrors "github.com/depotkit/depotkit/pkg/errors"
	"github.com/depotkit/depotkit/pkg/policy"
)

// PackageOptions control final archive assembly.
type PackageOptions struct {
	// Strict excludes key.vdf/config.vdf from the archive.
	Strict bool
}

// Package zips the processing directory into zipPath, deleting any
// pre-existing archive of the same name first, and on success removes the
// now-redundant processing directory. It returns the archive path.
func (m *Manager) Package(ctx context.Context, dir, zipPath string, opts PackageOptions) (string, error) {
	if err := os.Remove(zipPath); err != nil && !os.IsNotExist(err) {
		return "", pkgerrors.Wrap(err, "could not delete stale archive")
	}

	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		dir + string(os.PathSeparator): "",
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to read files from disk")
	}
	if opts.Strict {
		files = excludeKeyFiles(files)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to create archive %s", zipPath)
	}
	defer func() {
		_ = out.Sync()
		_ = out.Close()
	}()

	format := archives.Zip{}
	if err := format.Archive(ctx, out, files); err != nil {
		return "", pkgerrors.Wrap(err, "failed to create archive")
	}

	if err := os.RemoveAll(dir); err != nil {
		logger.Warn("could not remove processing dir", logger.Fields{"dir": dir, "error": err.Error()})
	}
	logger.Success("zipped the outcome", logger.Fields{"archive": zipPath})
	return zipPath, nil
}

// excludeKeyFiles drops key-file entries from the archive listing.
func excludeKeyFiles(files []archives.FileInfo) []archives.FileInfo {
	kept := files[:0]
	for _, f := range files {
		if policy.IsKeyFileName(filepath.Base(f.NameInArchive)) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
