package model

import "strings"

// ManifestSuffix is the on-disk extension of depot manifest files.
const ManifestSuffix = ".manifest"

// ManifestRef is the metadata encoded in a manifest filename. The on-disk
// convention is "<depotId>_<manifestGid>.manifest" where both halves are
// decimal digit strings.
type ManifestRef struct {
	DepotID     string
	ManifestGID string
}

// ParseManifestFilename decodes a manifest filename into its depot ID and
// manifest GID. It reports false for names that do not follow the
// convention; callers skip those with a warning rather than aborting.
func ParseManifestFilename(name string) (ManifestRef, bool) {
	base, ok := strings.CutSuffix(name, ManifestSuffix)
	if !ok {
		return ManifestRef{}, false
	}
	depotID, gid, ok := strings.Cut(base, "_")
	if !ok || !isDigits(depotID) || !isDigits(gid) {
		return ManifestRef{}, false
	}
	return ManifestRef{DepotID: depotID, ManifestGID: gid}, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
