// Package assembler builds the unlock script from collected depot keys and
// on-disk manifests, and packages the processing directory into the final
// archive.
package assembler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/depotkit/depotkit/internal/logger"
	pkgerrors "github.com/depotkit/depotkit/pkg/errors"
	"github.com/depotkit/depotkit/pkg/fsutil"
	"github.com/depotkit/depotkit/pkg/model"
)

// Manager implements script generation and packaging.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// BuildScript emits the unlock script for one AppID: the app registration,
// one keyed registration per collected depot, then — for every manifest on
// disk in (depot, gid) order — a keyless registration for depots without a
// key and the manifest-id directive. Filenames that do not follow the
// manifest naming convention are skipped with a warning.
func (m *Manager) BuildScript(appID string, depots []model.DepotKey, dir string) (string, error) {
	lines := []string{fmt.Sprintf("addappid(%s)", appID)}

	registered := make(map[string]bool, len(depots))
	for _, depot := range depots {
		lines = append(lines, fmt.Sprintf("addappid(%s,1,%q)", depot.DepotID, depot.DecryptionKey))
		registered[depot.DepotID] = true
	}

	refs, err := collectManifests(dir)
	if err != nil {
		return "", err
	}
	for _, ref := range refs {
		if !registered[ref.DepotID] {
			lines = append(lines, fmt.Sprintf("addappid(%s)", ref.DepotID))
			registered[ref.DepotID] = true
		}
		lines = append(lines, fmt.Sprintf("setManifestid(%s,%q,0)", ref.DepotID, ref.ManifestGID))
	}

	return strings.Join(lines, "\n") + "\n", nil
}

// WriteScript persists the script as <appID>.lua inside the processing
// directory.
func (m *Manager) WriteScript(appID, script, dir string) (string, error) {
	path := filepath.Join(dir, appID+".lua")
	if err := os.WriteFile(path, []byte(script), fsutil.FileModeDefault); err != nil {
		return "", pkgerrors.Wrap(err, "could not write unlock script")
	}
	return path, nil
}

// collectManifests walks the processing directory and returns parsed
// manifest references sorted by (numeric depot id, numeric manifest gid).
func collectManifests(dir string) ([]model.ManifestRef, error) {
	var refs []model.ManifestRef
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), model.ManifestSuffix) {
			return nil
		}
		ref, ok := model.ParseManifestFilename(d.Name())
		if !ok {
			logger.Warn("skipping unparseable manifest filename", logger.Fields{"name": d.Name()})
			return nil
		}
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "could not scan processing dir")
	}

	sort.Slice(refs, func(i, j int) bool {
		di, _ := strconv.ParseUint(refs[i].DepotID, 10, 64)
		dj, _ := strconv.ParseUint(refs[j].DepotID, 10, 64)
		if di != dj {
			return di < dj
		}
		gi, _ := strconv.ParseUint(refs[i].ManifestGID, 10, 64)
		gj, _ := strconv.ParseUint(refs[j].ManifestGID, 10, 64)
		return gi < gj
	})
	return refs, nil
}
