package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/depotkit/depotkit/internal/logger"
	"github.com/depotkit/depotkit/pkg/assembler"
	pkgerrors "github.com/depotkit/depotkit/pkg/errors"
	"github.com/depotkit/depotkit/pkg/model"
	"github.com/depotkit/depotkit/pkg/policy"
)

// New creates an orchestrator from its collaborators.
func New(resolver BranchResolver, engine PolicyEngine, archives ArchiveFetcher, asm Assembler, hooks Hooks) *Orchestrator {
	return &Orchestrator{
		Resolver:  resolver,
		Policy:    engine,
		Archives:  archives,
		Assembler: asm,
		Hooks:     hooks,
	}
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Download runs the pipeline for one AppID: selected repositories are tried
// in configured order and the first successful one wins. Repositories after
// a success are never consulted. It returns ErrAllSourcesExhausted when no
// repository yields a result, and the context error once cancellation is
// observed.
func (o *Orchestrator) Download(ctx context.Context, req model.DownloadRequest, opts Options) (*model.DownloadOutcome, error) {
	mode := policy.ModePermissive
	if req.StrictMode {
		mode = policy.ModeStrict
	}

	for _, repo := range req.Repos {
		if !repo.Selected {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emit(o.Hooks, Event{Phase: "resolving", AppID: req.AppID, Msg: repo.Name})

		var (
			outcome *model.DownloadOutcome
			err     error
		)
		if repo.Kind == model.KindPassThrough {
			outcome, err = o.passThrough(ctx, req, repo, opts)
		} else {
			outcome, err = o.keySource(ctx, req, repo, mode, opts)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			emit(o.Hooks, Event{Phase: "error", AppID: req.AppID, Msg: fmt.Sprintf("%s: %v", repo.Name, err)})
			logger.Warn("repository attempt failed, trying next", logger.Fields{
				"appid": req.AppID, "repo": repo.Name, "error": err.Error(),
			})
			continue
		}
		if outcome == nil {
			// Repository resolved but did not satisfy the policy.
			logger.Info("app not found in repository, continuing search", logger.Fields{
				"appid": req.AppID, "repo": repo.Name,
			})
			continue
		}
		emit(o.Hooks, Event{Phase: "done", AppID: req.AppID, Msg: outcome.OutputPath})
		return outcome, nil
	}

	return nil, fmt.Errorf("app %s: %w", req.AppID, pkgerrors.ErrAllSourcesExhausted)
}

// passThrough persists the branch zipball verbatim as the final artifact.
// An archive already present at the expected output path is treated as
// success with no re-fetch.
func (o *Orchestrator) passThrough(ctx context.Context, req model.DownloadRequest, repo model.RepositoryDescriptor, opts Options) (*model.DownloadOutcome, error) {
	outPath := model.ArchivePath(opts.OutputDir, req.GameName, req.AppID, false)
	if _, err := os.Stat(outPath); err == nil {
		emit(o.Hooks, Event{Phase: "skipped", AppID: req.AppID, Msg: outPath})
		logger.Info("archive already exists, skipping fetch", logger.Fields{"appid": req.AppID, "path": outPath})
		return o.outcome(req, repo, nil, outPath), nil
	}

	if err := o.Archives.FetchArchive(ctx, repo, req.AppID, outPath); err != nil {
		return nil, err
	}
	return o.outcome(req, repo, nil, outPath), nil
}

// keySource resolves the branch, applies the content policy and, when the
// attempt is successful, assembles the unlock script and final archive.
func (o *Orchestrator) keySource(ctx context.Context, req model.DownloadRequest, repo model.RepositoryDescriptor, mode policy.Mode, opts Options) (*model.DownloadOutcome, error) {
	res, entries, err := o.Resolver.Resolve(ctx, repo, req.AppID)
	if err != nil {
		return nil, err
	}
	logger.Info("branch resolved", logger.Fields{
		"appid": req.AppID, "repo": repo.Name, "updated": res.CommitDate,
	})

	dir := filepath.Join(model.ProcessingDir(opts.OutputDir, req.GameName, req.AppID), model.RepoDirName(repo.Name))
	emit(o.Hooks, Event{Phase: "processing", AppID: req.AppID, Msg: repo.Name})

	result, err := o.Policy.Apply(ctx, mode, entries, res, repo, dir)
	if err != nil {
		return nil, err
	}
	if !result.Successful(mode) {
		return nil, nil
	}

	emit(o.Hooks, Event{Phase: "assembling", AppID: req.AppID, Msg: repo.Name})
	depots := result.Keys.Keys()

	script, err := o.Assembler.BuildScript(req.AppID, depots, dir)
	if err != nil {
		return nil, err
	}
	if _, err := o.Assembler.WriteScript(req.AppID, script, dir); err != nil {
		return nil, err
	}

	encrypted := repo.Category == model.CategoryEncrypted
	zipPath := model.ArchivePath(opts.OutputDir, req.GameName, req.AppID, encrypted)
	if _, err := o.Assembler.Package(ctx, dir, zipPath, assembler.PackageOptions{Strict: req.StrictMode}); err != nil {
		return nil, err
	}
	return o.outcome(req, repo, depots, zipPath), nil
}

func (o *Orchestrator) outcome(req model.DownloadRequest, repo model.RepositoryDescriptor, depots []model.DepotKey, outPath string) *model.DownloadOutcome {
	return &model.DownloadOutcome{
		AppID:       req.AppID,
		GameName:    req.GameName,
		Depots:      depots,
		OutputPath:  outPath,
		SourceRepo:  repo.Name,
		PassThrough: repo.Kind == model.KindPassThrough,
	}
}

// DownloadBatch processes requests strictly one at a time. A failed AppID is
// recorded and the batch continues; cancellation halts the batch entirely.
func (o *Orchestrator) DownloadBatch(ctx context.Context, reqs []model.DownloadRequest, opts Options) []BatchResult {
	results := make([]BatchResult, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			results = append(results, BatchResult{AppID: req.AppID, Err: err})
			break
		}
		outcome, err := o.Download(ctx, req, opts)
		results = append(results, BatchResult{AppID: req.AppID, Outcome: outcome, Err: err})
		if err != nil && errors.Is(err, context.Canceled) {
			break
		}
	}
	return results
}
