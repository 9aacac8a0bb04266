package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akarpov/lifefeed/internal/config"
	"github.com/akarpov/lifefeed/internal/models"
)

const githubEventsBody = `[
  {
    "type": "WatchEvent",
    "repo": {"name": "octocat/starred"},
    "created_at": "2024-05-01T10:00:00Z"
  },
  {
    "type": "PushEvent",
    "repo": {"name": "octocat/dotfiles"},
    "created_at": "2024-05-01T09:00:00Z",
    "payload": {"commits": [{"sha": "aaa111", "message": "tweak vimrc"}]}
  },
  {
    "type": "PushEvent",
    "repo": {"name": "octocat/widget"},
    "created_at": "2024-05-01T08:00:00Z",
    "payload": {"commits": [
      {"sha": "bbb222", "message": "wip"},
      {"sha": "ccc333", "message": "Fix widget overflow\n\nLonger body here."}
    ]}
  }
]`

const githubCommitBody = `{
  "sha": "ccc333",
  "html_url": "https://github.com/octocat/widget/commit/ccc333",
  "commit": {
    "message": "Fix widget overflow\n\nLonger body here.",
    "author": {"date": "2024-05-01T07:59:00Z"}
  }
}`

func newGitHubTestServer(t *testing.T, eventsBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat/events/public", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(eventsBody))
	})
	mux.HandleFunc("/repos/octocat/widget/commits/ccc333", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(githubCommitBody))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestGitHubFetchSkipsExcludedRepo(t *testing.T) {
	ts := newGitHubTestServer(t, githubEventsBody)
	src := NewGitHub(ts.Client(), ts.URL, config.GitHub{
		User:        "octocat",
		ExcludeRepo: "octocat/dotfiles",
	})

	item, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.KindCommit, item.Kind)
	require.Equal(t, "Fix widget overflow", item.Title)
	require.Equal(t, "octocat/widget", item.Extra.Repo)
	require.Equal(t, "ccc333", item.GUID)
	require.Equal(t, "https://github.com/octocat/widget/commit/ccc333", item.Link)
	require.Equal(t, time.Date(2024, 5, 1, 7, 59, 0, 0, time.UTC), item.PublishedAt)
}

func TestGitHubFetchNoQualifyingPush(t *testing.T) {
	ts := newGitHubTestServer(t, `[{"type": "WatchEvent", "repo": {"name": "octocat/starred"}}]`)
	src := NewGitHub(ts.Client(), ts.URL, config.GitHub{User: "octocat"})

	_, err := src.Fetch(context.Background())
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, FailNoRecord, ferr.Kind)
}

func TestGitHubFetchExcludedMessage(t *testing.T) {
	events := `[
  {
    "type": "PushEvent",
    "repo": {"name": "octocat/widget"},
    "payload": {"commits": [{"sha": "ddd444", "message": "chore: [skip feed] bump deps"}]}
  }
]`
	ts := newGitHubTestServer(t, events)
	src := NewGitHub(ts.Client(), ts.URL, config.GitHub{
		User:           "octocat",
		ExcludeMessage: "[skip feed]",
	})

	_, err := src.Fetch(context.Background())
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, FailNoRecord, ferr.Kind)
}

func TestGitHubFetchMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	t.Cleanup(ts.Close)
	src := NewGitHub(ts.Client(), ts.URL, config.GitHub{User: "octocat"})

	_, err := src.Fetch(context.Background())
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, FailMalformed, ferr.Kind)
}

func TestGitHubFetchRejectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	t.Cleanup(ts.Close)
	src := NewGitHub(ts.Client(), ts.URL, config.GitHub{User: "octocat"})

	_, err := src.Fetch(context.Background())
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, FailRejected, ferr.Kind)
}

func TestGitHubFetchMissingUser(t *testing.T) {
	src := NewGitHub(http.DefaultClient, "http://unused", config.GitHub{})

	_, err := src.Fetch(context.Background())
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, FailConfigMissing, ferr.Kind)
	require.Equal(t, "github", ferr.Source)
}
