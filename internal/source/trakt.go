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

const traktDefaultBaseURL = "https://api.trakt.tv"

// Trakt fetches the most recent watch-history entry and attaches the
// user's rating for it, when one exists, from the separate ratings list.
type Trakt struct {
	client  *http.Client
	baseURL string
	cfg     config.Trakt
}

// NewTrakt builds the rating source. baseURL is overridable for tests.
func NewTrakt(client *http.Client, baseURL string, cfg config.Trakt) *Trakt {
	if baseURL == "" {
		baseURL = traktDefaultBaseURL
	}
	return &Trakt{client: client, baseURL: strings.TrimRight(baseURL, "/"), cfg: cfg}
}

func (t *Trakt) Name() string { return "trakt" }

type traktIDs struct {
	Trakt int `json:"trakt"`
	TMDB  int `json:"tmdb"`
}

type traktMovie struct {
	Title string   `json:"title"`
	Year  int      `json:"year"`
	IDs   traktIDs `json:"ids"`
}

type traktEpisode struct {
	Title  string   `json:"title"`
	Season int      `json:"season"`
	Number int      `json:"number"`
	IDs    traktIDs `json:"ids"`
}

type traktShow struct {
	Title string   `json:"title"`
	Year  int      `json:"year"`
	IDs   traktIDs `json:"ids"`
}

type traktHistoryEntry struct {
	Type      string        `json:"type"`
	WatchedAt time.Time     `json:"watched_at"`
	Movie     *traktMovie   `json:"movie"`
	Episode   *traktEpisode `json:"episode"`
	Show      *traktShow    `json:"show"`
}

type traktRatingEntry struct {
	Rating  int           `json:"rating"`
	RatedAt time.Time     `json:"rated_at"`
	Type    string        `json:"type"`
	Movie   *traktMovie   `json:"movie"`
	Episode *traktEpisode `json:"episode"`
}

func (t *Trakt) headers() map[string]string {
	return map[string]string{
		"Content-Type":      "application/json",
		"trakt-api-version": "2",
		"trakt-api-key":     t.cfg.APIKey,
	}
}

// Fetch returns the newest history entry. A missing rating is not a
// failure; the item simply carries Rating 0.
func (t *Trakt) Fetch(ctx context.Context) (*models.Item, error) {
	if t.cfg.APIKey == "" || t.cfg.User == "" {
		return nil, failf(t.Name(), "config", FailConfigMissing, "TRAKT_USER and TRAKT_API_KEY must be set")
	}

	var history []traktHistoryEntry
	url := fmt.Sprintf("%s/users/%s/history?limit=10", t.baseURL, t.cfg.User)
	if ferr := getJSON(ctx, t.client, url, t.headers(), &history, t.Name(), "history"); ferr != nil {
		return nil, ferr
	}
	if len(history) == 0 {
		return nil, failf(t.Name(), "history", FailNoRecord, "empty watch history")
	}

	var ratings []traktRatingEntry
	url = fmt.Sprintf("%s/users/%s/ratings", t.baseURL, t.cfg.User)
	if ferr := getJSON(ctx, t.client, url, t.headers(), &ratings, t.Name(), "ratings"); ferr != nil {
		return nil, ferr
	}

	entry := history[0]
	switch entry.Type {
	case "movie":
		if entry.Movie == nil {
			return nil, failf(t.Name(), "history", FailMalformed, "movie entry without movie object")
		}
		return t.movieItem(entry, ratings), nil
	case "episode":
		if entry.Episode == nil {
			return nil, failf(t.Name(), "history", FailMalformed, "episode entry without episode object")
		}
		return t.episodeItem(entry, ratings), nil
	default:
		return nil, failf(t.Name(), "history", FailMalformed, "unexpected history entry type %q", entry.Type)
	}
}

func (t *Trakt) movieItem(entry traktHistoryEntry, ratings []traktRatingEntry) *models.Item {
	id := entry.Movie.IDs.Trakt
	return &models.Item{
		Kind:        models.KindMovie,
		Title:       entry.Movie.Title,
		Link:        fmt.Sprintf("https://trakt.tv/movies/%d", id),
		GUID:        fmt.Sprintf("trakt-%d-%d", id, entry.WatchedAt.Unix()),
		PublishedAt: entry.WatchedAt.UTC(),
		Extra: models.Extra{
			Year:   entry.Movie.Year,
			Rating: ratingFor(ratings, id),
		},
	}
}

func (t *Trakt) episodeItem(entry traktHistoryEntry, ratings []traktRatingEntry) *models.Item {
	id := entry.Episode.IDs.Trakt
	showTitle := ""
	if entry.Show != nil {
		showTitle = entry.Show.Title
	}
	return &models.Item{
		Kind:        models.KindEpisode,
		Title:       entry.Episode.Title,
		Link:        fmt.Sprintf("https://trakt.tv/search/trakt/%d?id_type=episode", id),
		GUID:        fmt.Sprintf("trakt-%d-%d", id, entry.WatchedAt.Unix()),
		PublishedAt: entry.WatchedAt.UTC(),
		Extra: models.Extra{
			Season:    entry.Episode.Season,
			Number:    entry.Episode.Number,
			ShowTitle: showTitle,
			Rating:    ratingFor(ratings, id),
		},
	}
}

// ratingFor cross-references a trakt id against the ratings list. Zero
// means the title has not been rated yet.
func ratingFor(ratings []traktRatingEntry, traktID int) int {
	for _, r := range ratings {
		if r.Movie != nil && r.Movie.IDs.Trakt == traktID {
			return r.Rating
		}
		if r.Episode != nil && r.Episode.IDs.Trakt == traktID {
			return r.Rating
		}
	}
	return 0
}
