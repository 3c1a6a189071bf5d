// Package resolver maps an AppID onto the branch, commit and file tree of a
// GitHub repository following the branch-per-AppID mirroring convention.
package resolver

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v69/github"

	"github.com/depotkit/depotkit/internal/logger"
	pkgerrors "github.com/depotkit/depotkit/pkg/errors"
	"github.com/depotkit/depotkit/pkg/model"
)

// BranchResolver resolves an AppID-named branch to a commit and tree listing.
type BranchResolver interface {
	Resolve(ctx context.Context, repo model.RepositoryDescriptor, appID string) (*model.BranchResolution, []model.TreeEntry, error)
}

// ArchiveLinker resolves a branch-archive download URL for passthrough
// repositories.
type ArchiveLinker interface {
	ArchiveURL(ctx context.Context, repo model.RepositoryDescriptor, appID string) (*url.URL, error)
}

// Client talks to the GitHub REST API. An optional bearer token raises the
// rate limit; CDN mirrors are never authenticated.
type Client struct {
	gh *github.Client
}

var (
	_ BranchResolver = (*Client)(nil)
	_ ArchiveLinker  = (*Client)(nil)
)

// New creates a resolver client. token may be empty for unauthenticated,
// lower-rate-limited access.
func New(token string, timeout time.Duration) *Client {
	gh := github.NewClient(&http.Client{Timeout: timeout})
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{gh: gh}
}

// SetBaseURL points the client at a different API endpoint (tests, proxies).
func (c *Client) SetBaseURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return pkgerrors.Wrap(err, "invalid API base URL")
	}
	// go-github requires a trailing slash on BaseURL.
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	c.gh.BaseURL = parsed
	return nil
}

// Resolve looks up the branch named after the AppID and lists its full
// recursive tree. A non-success branch lookup means the repository does not
// host this AppID. A truncated tree is a non-fatal warning: processing
// continues on the partial listing.
func (c *Client) Resolve(ctx context.Context, repo model.RepositoryDescriptor, appID string) (*model.BranchResolution, []model.TreeEntry, error) {
	owner, name, err := model.SplitRepoName(repo.Name)
	if err != nil {
		return nil, nil, err
	}

	branch, _, err := c.gh.Repositories.GetBranch(ctx, owner, name, appID, 0)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, pkgerrors.Wrapf(pkgerrors.ErrRepositoryUnavailable, "%s@%s: %v", repo.Name, appID, err)
	}

	commit := branch.GetCommit()
	res := &model.BranchResolution{
		CommitSHA:  commit.GetSHA(),
		TreeSHA:    commit.GetCommit().GetTree().GetSHA(),
		CommitDate: commit.GetCommit().GetAuthor().GetDate().Format(time.RFC3339),
	}
	if res.CommitSHA == "" || res.TreeSHA == "" {
		return nil, nil, pkgerrors.Wrapf(pkgerrors.ErrRepositoryUnavailable, "%s@%s: branch response missing commit data", repo.Name, appID)
	}

	tree, _, err := c.gh.Git.GetTree(ctx, owner, name, res.TreeSHA, true)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, pkgerrors.Wrapf(pkgerrors.ErrRepositoryUnavailable, "%s@%s: tree lookup: %v", repo.Name, appID, err)
	}
	if tree.GetTruncated() {
		logger.Warn("tree listing truncated, deeply nested files may be missing",
			logger.Fields{"repo": repo.Name, "appid": appID})
	}

	entries := make([]model.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, model.TreeEntry{
			Path: e.GetPath(),
			Type: model.EntryType(e.GetType()),
		})
	}
	return res, entries, nil
}

// ArchiveURL resolves the zipball link of the AppID-named branch.
func (c *Client) ArchiveURL(ctx context.Context, repo model.RepositoryDescriptor, appID string) (*url.URL, error) {
	owner, name, err := model.SplitRepoName(repo.Name)
	if err != nil {
		return nil, err
	}
	link, _, err := c.gh.Repositories.GetArchiveLink(ctx, owner, name,
		github.Zipball, &github.RepositoryContentGetOptions{Ref: appID}, 3)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, pkgerrors.Wrapf(pkgerrors.ErrRepositoryUnavailable, "%s@%s: archive link: %v", repo.Name, appID, err)
	}
	return link, nil
}
