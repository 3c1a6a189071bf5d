//go:generate mockgen -destination=./mocks/orchestrator.go . BranchResolver,PolicyEngine,ArchiveFetcher,Assembler

package orchestrator

import (
	"context"

	"github.com/depotkit/depotkit/pkg/assembler"
	"github.com/depotkit/depotkit/pkg/model"
	"github.com/depotkit/depotkit/pkg/policy"
)

// BranchResolver is the subset of the repository resolver used by the
// orchestrator.
type BranchResolver interface {
	Resolve(ctx context.Context, repo model.RepositoryDescriptor, appID string) (*model.BranchResolution, []model.TreeEntry, error)
}

// PolicyEngine selects and fetches a resolved tree's files per mode.
type PolicyEngine interface {
	Apply(ctx context.Context, mode policy.Mode, entries []model.TreeEntry, res *model.BranchResolution, repo model.RepositoryDescriptor, dir string) (policy.Result, error)
}

// ArchiveFetcher persists a passthrough repository's branch archive verbatim.
type ArchiveFetcher interface {
	FetchArchive(ctx context.Context, repo model.RepositoryDescriptor, appID, destPath string) error
}

// Assembler builds the unlock script and packages the processing directory.
type Assembler interface {
	BuildScript(appID string, depots []model.DepotKey, dir string) (string, error)
	WriteScript(appID, script, dir string) (string, error)
	Package(ctx context.Context, dir, zipPath string, opts assembler.PackageOptions) (string, error)
}

// Orchestrator ties resolver, policy engine, archive fetcher and assembler
// together for one AppID at a time.
type Orchestrator struct {
	Resolver  BranchResolver
	Policy    PolicyEngine
	Archives  ArchiveFetcher
	Assembler Assembler
	Hooks     Hooks // Hooks for progress and event notifications
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // resolving|processing|assembling|skipped|done|error
	AppID string
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Options control orchestrator execution.
type Options struct {
	// OutputDir is the root for processing directories and final archives.
	OutputDir string
}

// BatchResult pairs one AppID with its outcome.
type BatchResult struct {
	AppID   string
	Outcome *model.DownloadOutcome
	Err     error
}
