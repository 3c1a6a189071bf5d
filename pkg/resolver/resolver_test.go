package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/depotkit/depotkit/pkg/errors"
	"github.com/depotkit/depotkit/pkg/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New("", time.Second)
	require.NoError(t, c.SetBaseURL(srv.URL+"/"))
	return c
}

func TestResolve(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/branches/400", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"name": "400",
			"commit": {
				"sha": "abc123",
				"commit": {
					"tree": {"sha": "tree456"},
					"author": {"date": "2024-01-02T03:04:05Z"}
				}
			}
		}`))
	})
	mux.HandleFunc("GET /repos/owner/repo/git/trees/tree456", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		_, _ = w.Write([]byte(`{
			"sha": "tree456",
			"truncated": false,
			"tree": [
				{"path": "key.vdf", "type": "blob"},
				{"path": "depots", "type": "tree"},
				{"path": "depots/100_5.manifest", "type": "blob"}
			]
		}`))
	})

	c := newTestClient(t, mux)
	repo := model.RepositoryDescriptor{Name: "owner/repo", Kind: model.KindKeySource}

	res, entries, err := c.Resolve(context.Background(), repo, "400")
	require.NoError(t, err)

	assert.Equal(t, "abc123", res.CommitSHA)
	assert.Equal(t, "tree456", res.TreeSHA)
	assert.Equal(t, "2024-01-02T03:04:05Z", res.CommitDate)

	require.Len(t, entries, 3)
	assert.Equal(t, model.TreeEntry{Path: "key.vdf", Type: model.EntryBlob}, entries[0])
	assert.Equal(t, model.TreeEntry{Path: "depots", Type: model.EntryTree}, entries[1])
	assert.Equal(t, model.TreeEntry{Path: "depots/100_5.manifest", Type: model.EntryBlob}, entries[2])
}

func TestResolveBranchMissing(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "Branch not found"}`, http.StatusNotFound)
	}))
	repo := model.RepositoryDescriptor{Name: "owner/repo", Kind: model.KindKeySource}

	_, _, err := c.Resolve(context.Background(), repo, "999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrRepositoryUnavailable))
}

func TestResolveTruncatedTreeIsNonFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/branches/400", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"commit":{"sha":"abc","commit":{"tree":{"sha":"t"},"author":{"date":"2024-01-02T03:04:05Z"}}}}`))
	})
	mux.HandleFunc("GET /repos/owner/repo/git/trees/t", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"truncated": true, "tree": [{"path": "a.manifest", "type": "blob"}]}`))
	})

	c := newTestClient(t, mux)
	repo := model.RepositoryDescriptor{Name: "owner/repo", Kind: model.KindKeySource}

	_, entries, err := c.Resolve(context.Background(), repo, "400")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestResolveInvalidRepoName(t *testing.T) {
	c := New("", time.Second)
	_, _, err := c.Resolve(context.Background(), model.RepositoryDescriptor{Name: "bogus"}, "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidRepository))
}

func TestArchiveURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/zipball/400", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "https://codeload.example.com/owner/repo/zip/400")
		w.WriteHeader(http.StatusFound)
	})

	c := newTestClient(t, mux)
	repo := model.RepositoryDescriptor{Name: "owner/repo", Kind: model.KindPassThrough}

	link, err := c.ArchiveURL(context.Background(), repo, "400")
	require.NoError(t, err)
	assert.Equal(t, "https://codeload.example.com/owner/repo/zip/400", link.String())
}
