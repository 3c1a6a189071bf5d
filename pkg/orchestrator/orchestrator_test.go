package orchestrator

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/depotkit/depotkit/pkg/assembler"
	"github.com/depotkit/depotkit/pkg/download"
	pkgerrors "github.com/depotkit/depotkit/pkg/errors"
	"github.com/depotkit/depotkit/pkg/model"
	mocks "github.com/depotkit/depotkit/pkg/orchestrator/mocks"
	"github.com/depotkit/depotkit/pkg/policy"
)

func keySet(keys ...model.DepotKey) *model.DepotKeySet {
	s := model.NewDepotKeySet()
	s.AddAll(keys)
	return s
}

func newOrchestrator(ctrl *gomock.Controller) (*Orchestrator, *mocks.MockBranchResolver, *mocks.MockPolicyEngine, *mocks.MockArchiveFetcher, *mocks.MockAssembler) {
	res := mocks.NewMockBranchResolver(ctrl)
	pol := mocks.NewMockPolicyEngine(ctrl)
	arc := mocks.NewMockArchiveFetcher(ctrl)
	asm := mocks.NewMockAssembler(ctrl)
	return New(res, pol, arc, asm, Hooks{}), res, pol, arc, asm
}

func TestDownloadFailoverOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orch, res, pol, _, asm := newOrchestrator(ctrl)
	out := t.TempDir()

	repoA := model.RepositoryDescriptor{Name: "mirrors/a", Kind: model.KindKeySource, Selected: true}
	repoB := model.RepositoryDescriptor{Name: "mirrors/b", Kind: model.KindKeySource, Selected: true}
	repoC := model.RepositoryDescriptor{Name: "mirrors/c", Kind: model.KindKeySource, Category: model.CategoryEncrypted, Selected: true}

	resolution := &model.BranchResolution{CommitSHA: "sha", TreeSHA: "tree"}
	entries := []model.TreeEntry{{Path: "key.vdf", Type: model.EntryBlob}}
	depots := []model.DepotKey{{DepotID: "100", DecryptionKey: "AAA"}, {DepotID: "101", DecryptionKey: "BBB"}}

	// A fails resolution entirely.
	res.EXPECT().Resolve(gomock.Any(), repoA, "400").
		Return(nil, nil, pkgerrors.ErrRepositoryUnavailable).Times(1)

	// B resolves but yields zero keys in strict mode.
	var dirB string
	res.EXPECT().Resolve(gomock.Any(), repoB, "400").Return(resolution, entries, nil).Times(1)
	pol.EXPECT().Apply(gomock.Any(), policy.ModeStrict, entries, resolution, repoB, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ policy.Mode, _ []model.TreeEntry, _ *model.BranchResolution, _ model.RepositoryDescriptor, dir string) (policy.Result, error) {
			dirB = dir
			return policy.Result{Keys: keySet(), FilesTouched: true}, nil
		}).Times(1)

	// C resolves with two keys and wins.
	var dirC string
	res.EXPECT().Resolve(gomock.Any(), repoC, "400").Return(resolution, entries, nil).Times(1)
	pol.EXPECT().Apply(gomock.Any(), policy.ModeStrict, entries, resolution, repoC, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ policy.Mode, _ []model.TreeEntry, _ *model.BranchResolution, _ model.RepositoryDescriptor, dir string) (policy.Result, error) {
			dirC = dir
			return policy.Result{Keys: keySet(depots...), FilesTouched: true}, nil
		}).Times(1)

	asm.EXPECT().BuildScript("400", depots, gomock.Any()).Return("script", nil).Times(1)
	asm.EXPECT().WriteScript("400", "script", gomock.Any()).Return("400.lua", nil).Times(1)

	wantZip := model.ArchivePath(out, "Portal", "400", true)
	asm.EXPECT().Package(gomock.Any(), gomock.Any(), wantZip, assembler.PackageOptions{Strict: true}).
		Return(wantZip, nil).Times(1)

	req := model.DownloadRequest{
		AppID: "400", GameName: "Portal",
		Repos:      []model.RepositoryDescriptor{repoA, repoB, repoC},
		StrictMode: true,
	}
	outcome, err := orch.Download(context.Background(), req, Options{OutputDir: out})
	require.NoError(t, err)

	assert.Equal(t, "mirrors/c", outcome.SourceRepo)
	assert.Equal(t, depots, outcome.Depots)
	assert.Equal(t, wantZip, outcome.OutputPath)
	assert.False(t, outcome.PassThrough)

	// Each repository attempt works in its own directory.
	assert.NotEqual(t, dirB, dirC)
	assert.Contains(t, dirB, model.RepoDirName(repoB.Name))
	assert.Contains(t, dirC, model.RepoDirName(repoC.Name))
}

func TestDownloadShortCircuitsAfterSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orch, res, pol, _, asm := newOrchestrator(ctrl)
	out := t.TempDir()

	first := model.RepositoryDescriptor{Name: "mirrors/first", Kind: model.KindKeySource, Selected: true}
	// Never consulted: no expectations registered for it.
	second := model.RepositoryDescriptor{Name: "mirrors/second", Kind: model.KindKeySource, Selected: true}

	resolution := &model.BranchResolution{CommitSHA: "sha", TreeSHA: "tree"}
	res.EXPECT().Resolve(gomock.Any(), first, "10").Return(resolution, nil, nil).Times(1)
	pol.EXPECT().Apply(gomock.Any(), policy.ModePermissive, gomock.Any(), resolution, first, gomock.Any()).
		Return(policy.Result{Keys: keySet(), FilesTouched: true}, nil).Times(1)
	asm.EXPECT().BuildScript("10", gomock.Any(), gomock.Any()).Return("s", nil)
	asm.EXPECT().WriteScript("10", "s", gomock.Any()).Return("p", nil)
	asm.EXPECT().Package(gomock.Any(), gomock.Any(), gomock.Any(), assembler.PackageOptions{Strict: false}).
		Return("out.zip", nil)

	req := model.DownloadRequest{AppID: "10", GameName: "G", Repos: []model.RepositoryDescriptor{first, second}}
	outcome, err := orch.Download(context.Background(), req, Options{OutputDir: out})
	require.NoError(t, err)
	assert.Equal(t, "mirrors/first", outcome.SourceRepo)
}

func TestDownloadPassThroughSkipsExistingArchive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orch, _, _, _, _ := newOrchestrator(ctrl)
	out := t.TempDir()

	existing := model.ArchivePath(out, "Portal", "123", false)
	require.NoError(t, os.WriteFile(existing, []byte("zip"), 0o644))

	repo := model.RepositoryDescriptor{Name: "bulk/archive", Kind: model.KindPassThrough, Selected: true}
	req := model.DownloadRequest{AppID: "123", GameName: "Portal", Repos: []model.RepositoryDescriptor{repo}}

	outcome, err := orch.Download(context.Background(), req, Options{OutputDir: out})
	require.NoError(t, err)

	assert.Equal(t, existing, outcome.OutputPath)
	assert.True(t, outcome.PassThrough)
	assert.Empty(t, outcome.Depots, "passthrough outcomes never carry depot keys")
}

func TestDownloadPassThroughFetches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orch, _, _, arc, _ := newOrchestrator(ctrl)
	out := t.TempDir()

	repo := model.RepositoryDescriptor{Name: "bulk/archive", Kind: model.KindPassThrough, Selected: true}
	wantPath := model.ArchivePath(out, "Portal", "123", false)

	arc.EXPECT().FetchArchive(gomock.Any(), repo, "123", wantPath).Return(nil).Times(1)

	req := model.DownloadRequest{AppID: "123", GameName: "Portal", Repos: []model.RepositoryDescriptor{repo}}
	outcome, err := orch.Download(context.Background(), req, Options{OutputDir: out})
	require.NoError(t, err)

	assert.Equal(t, wantPath, outcome.OutputPath)
	assert.True(t, outcome.PassThrough)
}

func TestDownloadSkipsUnselectedRepos(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orch, _, _, _, _ := newOrchestrator(ctrl)

	repo := model.RepositoryDescriptor{Name: "mirrors/a", Kind: model.KindKeySource, Selected: false}
	req := model.DownloadRequest{AppID: "1", GameName: "G", Repos: []model.RepositoryDescriptor{repo}}

	_, err := orch.Download(context.Background(), req, Options{OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrAllSourcesExhausted))
}

func TestDownloadCancelledBeforeAnyWork(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orch, _, _, _, _ := newOrchestrator(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := model.RepositoryDescriptor{Name: "mirrors/a", Kind: model.KindKeySource, Selected: true}
	req := model.DownloadRequest{AppID: "1", GameName: "G", Repos: []model.RepositoryDescriptor{repo}}

	_, err := orch.Download(ctx, req, Options{OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDownloadBatchContinuesAfterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orch, res, pol, _, asm := newOrchestrator(ctrl)
	out := t.TempDir()

	repo := model.RepositoryDescriptor{Name: "mirrors/a", Kind: model.KindKeySource, Selected: true}

	// First AppID fails resolution, second succeeds.
	res.EXPECT().Resolve(gomock.Any(), repo, "1").Return(nil, nil, pkgerrors.ErrRepositoryUnavailable)
	resolution := &model.BranchResolution{CommitSHA: "sha"}
	res.EXPECT().Resolve(gomock.Any(), repo, "2").Return(resolution, nil, nil)
	pol.EXPECT().Apply(gomock.Any(), policy.ModePermissive, gomock.Any(), resolution, repo, gomock.Any()).
		Return(policy.Result{Keys: keySet(), FilesTouched: true}, nil)
	asm.EXPECT().BuildScript("2", gomock.Any(), gomock.Any()).Return("s", nil)
	asm.EXPECT().WriteScript("2", "s", gomock.Any()).Return("p", nil)
	asm.EXPECT().Package(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("z", nil)

	reqs := []model.DownloadRequest{
		{AppID: "1", GameName: "A", Repos: []model.RepositoryDescriptor{repo}},
		{AppID: "2", GameName: "B", Repos: []model.RepositoryDescriptor{repo}},
	}
	results := orch.DownloadBatch(context.Background(), reqs, Options{OutputDir: out})

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.True(t, errors.Is(results[0].Err, pkgerrors.ErrAllSourcesExhausted))
	require.NoError(t, results[1].Err)
	assert.Equal(t, "2", results[1].Outcome.AppID)
}

func TestDownloadBatchHaltsOnCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orch, _, _, _, _ := newOrchestrator(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := model.RepositoryDescriptor{Name: "mirrors/a", Kind: model.KindKeySource, Selected: true}
	reqs := []model.DownloadRequest{
		{AppID: "1", GameName: "A", Repos: []model.RepositoryDescriptor{repo}},
		{AppID: "2", GameName: "B", Repos: []model.RepositoryDescriptor{repo}},
	}
	results := orch.DownloadBatch(ctx, reqs, Options{OutputDir: t.TempDir()})

	require.Len(t, results, 1, "batch halts entirely once cancellation is observed")
	assert.True(t, errors.Is(results[0].Err, context.Canceled))
}

type fakeLinker struct {
	link *url.URL
	err  error
}

func (f *fakeLinker) ArchiveURL(_ context.Context, _ model.RepositoryDescriptor, _ string) (*url.URL, error) {
	return f.link, f.err
}

type fakeDownloader struct {
	item download.Item
	opts download.Options
}

func (f *fakeDownloader) Fetch(_ context.Context, item download.Item, opts download.Options) (string, error) {
	f.item = item
	f.opts = opts
	return filepath.Join(opts.Dir, item.Filename), nil
}

func TestZipballFetcherSplitsDestination(t *testing.T) {
	link, err := url.Parse("https://codeload.example.com/owner/repo/zip/400")
	require.NoError(t, err)

	dl := &fakeDownloader{}
	z := &ZipballFetcher{Links: &fakeLinker{link: link}, DL: dl}

	repo := model.RepositoryDescriptor{Name: "bulk/archive", Kind: model.KindPassThrough, Selected: true}
	dest := filepath.Join("out", "Portal - 400.zip")
	require.NoError(t, z.FetchArchive(context.Background(), repo, "400", dest))

	assert.Equal(t, link, dl.item.URL)
	assert.Equal(t, "Portal - 400.zip", dl.item.Filename)
	assert.Equal(t, "out", dl.opts.Dir)
}

func TestZipballFetcherLinkError(t *testing.T) {
	z := &ZipballFetcher{Links: &fakeLinker{err: pkgerrors.ErrRepositoryUnavailable}, DL: &fakeDownloader{}}
	repo := model.RepositoryDescriptor{Name: "bulk/archive", Kind: model.KindPassThrough}
	err := z.FetchArchive(context.Background(), repo, "400", filepath.Join("out", "x.zip"))
	assert.True(t, errors.Is(err, pkgerrors.ErrRepositoryUnavailable))
}
