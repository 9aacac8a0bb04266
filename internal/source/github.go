package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/akarpov/lifefeed/internal/config"
	"github.com/akarpov/lifefeed/internal/models"
)

const githubDefaultBaseURL = "https://api.github.com"

// GitHub fetches the most recent push from a user's public event stream
// and resolves the pushed commit via the commit-detail endpoint.
type GitHub struct {
	client  *http.Client
	baseURL string
	cfg     config.GitHub
}

// NewGitHub builds the commit source. baseURL is overridable for tests;
// pass "" for the public API.
func NewGitHub(client *http.Client, baseURL string, cfg config.GitHub) *GitHub {
	if baseURL == "" {
		baseURL = githubDefaultBaseURL
	}
	return &GitHub{client: client, baseURL: strings.TrimRight(baseURL, "/"), cfg: cfg}
}

func (g *GitHub) Name() string { return "github" }

type githubEvent struct {
	Type string `json:"type"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	Payload struct {
		Commits []struct {
			SHA     string `json:"sha"`
			Message string `json:"message"`
			URL     string `json:"url"`
		} `json:"commits"`
	} `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

type githubCommitDetail struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string `json:"html_url"`
}

// Fetch walks the event list in upstream order (newest first) and returns
// the first push that survives the configured denylist.
func (g *GitHub) Fetch(ctx context.Context) (*models.Item, error) {
	if g.cfg.User == "" {
		return nil, failf(g.Name(), "config", FailConfigMissing, "GITHUB_USER is not set")
	}

	var events []githubEvent
	url := fmt.Sprintf("%s/users/%s/events/public", g.baseURL, g.cfg.User)
	if ferr := getJSON(ctx, g.client, url, nil, &events, g.Name(), "events"); ferr != nil {
		return nil, ferr
	}

	repo, sha, ok := g.pickPush(events)
	if !ok {
		return nil, failf(g.Name(), "events", FailNoRecord, "no qualifying push event among %d events", len(events))
	}

	var detail githubCommitDetail
	url = fmt.Sprintf("%s/repos/%s/commits/%s", g.baseURL, repo, sha)
	if ferr := getJSON(ctx, g.client, url, nil, &detail, g.Name(), "commit_detail"); ferr != nil {
		return nil, ferr
	}
	if detail.Commit.Message == "" || detail.HTMLURL == "" {
		return nil, failf(g.Name(), "commit_detail", FailMalformed, "commit %s missing message or url", sha)
	}

	return &models.Item{
		Kind:        models.KindCommit,
		Title:       firstLine(detail.Commit.Message),
		Link:        detail.HTMLURL,
		GUID:        sha,
		PublishedAt: detail.Commit.Author.Date.UTC(),
		Extra: models.Extra{
			Repo:          repo,
			CommitMessage: detail.Commit.Message,
		},
	}, nil
}

// pickPush returns the repo and head commit sha of the first push event
// that has at least one commit and is not denylisted.
func (g *GitHub) pickPush(events []githubEvent) (repo, sha string, ok bool) {
	for _, ev := range events {
		if ev.Type != "PushEvent" || len(ev.Payload.Commits) == 0 {
			continue
		}
		if g.cfg.ExcludeRepo != "" && ev.Repo.Name == g.cfg.ExcludeRepo {
			continue
		}
		commit := ev.Payload.Commits[len(ev.Payload.Commits)-1]
		if g.cfg.ExcludeMessage != "" && strings.Contains(commit.Message, g.cfg.ExcludeMessage) {
			continue
		}
		return ev.Repo.Name, commit.SHA, true
	}
	return "", "", false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
