// Package model contains the shared data model for the manifest acquisition
// pipeline: repository descriptors, depot keys, tree listings and outcomes.
package model

import (
	"fmt"
	"strings"

	"github.com/depotkit/depotkit/pkg/errors"
)

// RepositoryKind selects how a repository's content is consumed.
type RepositoryKind string

const (
	// KindKeySource repositories hold per-file manifests and key files that
	// are fetched individually and assembled into an unlock package.
	KindKeySource RepositoryKind = "keysource"
	// KindPassThrough repositories are archived wholesale: the branch zipball
	// is persisted verbatim as the final artifact.
	KindPassThrough RepositoryKind = "passthrough"
)

// RepositoryCategory is a display-only classification. Its single effect on
// the pipeline is the " - encrypted" suffix on assembled archive names.
type RepositoryCategory string

const (
	CategoryEncrypted RepositoryCategory = "encrypted"
	CategoryDecrypted RepositoryCategory = "decrypted"
)

// RepositoryDescriptor identifies one GitHub repository mirroring depot data.
type RepositoryDescriptor struct {
	// Name is the "owner/repo" slug.
	Name     string
	Kind     RepositoryKind
	Category RepositoryCategory
	Selected bool
}

// Validate checks the descriptor for an owner/repo shaped name and a known kind.
func (r RepositoryDescriptor) Validate() error {
	if _, _, err := SplitRepoName(r.Name); err != nil {
		return err
	}
	switch r.Kind {
	case KindKeySource, KindPassThrough:
		return nil
	default:
		return errors.Wrapf(errors.ErrConfigValidation, "unknown repository kind %q", r.Kind)
	}
}

// Owner returns the owner half of the repository slug.
func (r RepositoryDescriptor) Owner() string {
	owner, _, _ := SplitRepoName(r.Name)
	return owner
}

// Repo returns the repository half of the slug.
func (r RepositoryDescriptor) Repo() string {
	_, repo, _ := SplitRepoName(r.Name)
	return repo
}

// SplitRepoName splits an "owner/repo" slug into its halves.
func SplitRepoName(name string) (owner, repo string, err error) {
	parts := strings.SplitN(name, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%q: %w", name, errors.ErrInvalidRepository)
	}
	return parts[0], parts[1], nil
}

// DownloadRequest describes one pipeline run. It is immutable for the
// duration of the run.
type DownloadRequest struct {
	AppID      string
	GameName   string
	Repos      []RepositoryDescriptor
	StrictMode bool
}

// BranchResolution is the result of resolving an AppID-named branch.
type BranchResolution struct {
	CommitSHA  string
	TreeSHA    string
	CommitDate string
}

// EntryType distinguishes blobs from sub-trees in a tree listing.
type EntryType string

const (
	EntryBlob EntryType = "blob"
	EntryTree EntryType = "tree"
)

// TreeEntry is one entry of a flat, possibly truncated commit tree listing.
type TreeEntry struct {
	Path string
	Type EntryType
}
