package orchestrator

import (
	"context"
	"path/filepath"

	"github.com/depotkit/depotkit/internal/logger"
	"github.com/depotkit/depotkit/pkg/download"
	"github.com/depotkit/depotkit/pkg/model"
	"github.com/depotkit/depotkit/pkg/resolver"
)

// ZipballFetcher fetches a branch zipball through the origin's archive
// endpoint and persists it verbatim. It implements ArchiveFetcher.
type ZipballFetcher struct {
	Links resolver.ArchiveLinker
	DL    download.Manager
}

var _ ArchiveFetcher = (*ZipballFetcher)(nil)

// FetchArchive resolves the archive link for the AppID-named branch and
// streams it to destPath.
func (z *ZipballFetcher) FetchArchive(ctx context.Context, repo model.RepositoryDescriptor, appID, destPath string) error {
	link, err := z.Links.ArchiveURL(ctx, repo, appID)
	if err != nil {
		return err
	}
	logger.Debug("fetching branch archive", logger.Fields{"repo": repo.Name, "appid": appID})

	_, err = z.DL.Fetch(ctx, download.Item{URL: link, Filename: filepath.Base(destPath)},
		download.Options{Dir: filepath.Dir(destPath)})
	return err
}
