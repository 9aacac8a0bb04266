package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Feed describes channel-level metadata for the generated document.
type Feed struct {
	Title       string
	Description string
	Link        string
}

// GitHub configures the commit source.
type GitHub struct {
	User           string
	ExcludeRepo    string
	ExcludeMessage string
}

// Trakt configures the rating source.
type Trakt struct {
	User   string
	APIKey string
}

// Flickr configures the photo source. When FeedURL is set the public feed
// variant is used; otherwise the REST variant requires APIKey and UserID.
type Flickr struct {
	UserID  string
	APIKey  string
	FeedURL string
}

// Config holds everything the server process needs.
type Config struct {
	BindAddr        string
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	CachePath       string
	Feed            Feed
	GitHub          GitHub
	Trakt           Trakt
	Flickr          Flickr
}

// Load builds the server config from environment variables.
func Load() (*Config, error) {
	c := &Config{
		BindAddr:        getEnv("FEED_BIND_ADDR", "0.0.0.0:8080"),
		RefreshInterval: getDuration("FEED_REFRESH_INTERVAL", "12h"),
		FetchTimeout:    getDuration("FEED_FETCH_TIMEOUT", "15s"),
		CachePath:       getEnv("FEED_CACHE_PATH", ""),
		Feed: Feed{
			Title:       getEnv("FEED_TITLE", "Activity feed"),
			Description: getEnv("FEED_DESCRIPTION", "Latest commits, ratings and photos in one place"),
			Link:        getEnv("FEED_LINK", "http://localhost:8080/feed.xml"),
		},
		GitHub: GitHub{
			User:           getEnv("GITHUB_USER", ""),
			ExcludeRepo:    getEnv("GITHUB_EXCLUDE_REPO", ""),
			ExcludeMessage: getEnv("GITHUB_EXCLUDE_MESSAGE", ""),
		},
		Trakt: Trakt{
			User:   getEnv("TRAKT_USER", ""),
			APIKey: getEnv("TRAKT_API_KEY", ""),
		},
		Flickr: Flickr{
			UserID:  getEnv("FLICKR_USER_ID", ""),
			APIKey:  getEnv("FLICKR_API_KEY", ""),
			FeedURL: getEnv("FLICKR_FEED_URL", ""),
		},
	}

	if c.RefreshInterval <= 0 {
		return nil, fmt.Errorf("FEED_REFRESH_INTERVAL must be positive")
	}
	if c.FetchTimeout <= 0 {
		return nil, fmt.Errorf("FEED_FETCH_TIMEOUT must be positive")
	}
	if c.FetchTimeout > 30*time.Second {
		return nil, fmt.Errorf("FEED_FETCH_TIMEOUT cannot exceed 30s")
	}
	if strings.TrimSpace(c.Feed.Title) == "" {
		return nil, fmt.Errorf("FEED_TITLE cannot be blank")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}
