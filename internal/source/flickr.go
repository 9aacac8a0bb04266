package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/akarpov/lifefeed/internal/config"
	"github.com/akarpov/lifefeed/internal/models"
)

const flickrDefaultBaseURL = "https://api.flickr.com/services/rest/"

// Flickr fetches the user's newest public photo. Two integration variants
// exist: the REST API (api key + user id) and the public Atom/RSS feed
// (feed URL only). A configured feed URL takes precedence.
type Flickr struct {
	client  *http.Client
	baseURL string
	cfg     config.Flickr
	parser  *gofeed.Parser
}

// NewFlickr builds the photo source. baseURL is overridable for tests.
func NewFlickr(client *http.Client, baseURL string, cfg config.Flickr) *Flickr {
	if baseURL == "" {
		baseURL = flickrDefaultBaseURL
	}
	parser := gofeed.NewParser()
	parser.Client = client
	return &Flickr{client: client, baseURL: baseURL, cfg: cfg, parser: parser}
}

func (f *Flickr) Name() string { return "flickr" }

type flickrPhotosResponse struct {
	Photos struct {
		Photo []struct {
			ID         string `json:"id"`
			Owner      string `json:"owner"`
			Secret     string `json:"secret"`
			Server     string `json:"server"`
			Title      string `json:"title"`
			DateUpload string `json:"dateupload"`
		} `json:"photo"`
	} `json:"photos"`
	Stat    string `json:"stat"`
	Message string `json:"message"`
}

func (f *Flickr) Fetch(ctx context.Context) (*models.Item, error) {
	if f.cfg.FeedURL != "" {
		return f.fetchFeed(ctx)
	}
	if f.cfg.APIKey == "" || f.cfg.UserID == "" {
		return nil, failf(f.Name(), "config", FailConfigMissing, "set FLICKR_FEED_URL, or FLICKR_API_KEY and FLICKR_USER_ID")
	}
	return f.fetchREST(ctx)
}

// fetchREST calls flickr.people.getPublicPhotos and builds the direct
// image URL from server/id/secret identifiers.
func (f *Flickr) fetchREST(ctx context.Context) (*models.Item, error) {
	q := url.Values{}
	q.Set("method", "flickr.people.getPublicPhotos")
	q.Set("api_key", f.cfg.APIKey)
	q.Set("user_id", f.cfg.UserID)
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	q.Set("per_page", "10")
	q.Set("extras", "date_upload")

	var parsed flickrPhotosResponse
	endpoint := f.baseURL + "?" + q.Encode()
	if ferr := getJSON(ctx, f.client, endpoint, nil, &parsed, f.Name(), "photos"); ferr != nil {
		return nil, ferr
	}
	if parsed.Stat != "ok" {
		return nil, failf(f.Name(), "photos", FailRejected, "api failure %q: %s", parsed.Stat, parsed.Message)
	}
	if len(parsed.Photos.Photo) == 0 {
		return nil, failf(f.Name(), "photos", FailNoRecord, "no public photos")
	}

	photo := parsed.Photos.Photo[0]
	if photo.ID == "" || photo.Server == "" || photo.Secret == "" {
		return nil, failf(f.Name(), "photos", FailMalformed, "photo record missing id, server or secret")
	}

	uploaded := time.Now().UTC()
	if secs, err := strconv.ParseInt(photo.DateUpload, 10, 64); err == nil {
		uploaded = time.Unix(secs, 0).UTC()
	}

	owner := photo.Owner
	if owner == "" {
		owner = f.cfg.UserID
	}

	return &models.Item{
		Kind:        models.KindPhoto,
		Title:       photo.Title,
		Link:        fmt.Sprintf("https://www.flickr.com/photos/%s/%s", owner, photo.ID),
		GUID:        "flickr-" + photo.ID,
		PublishedAt: uploaded,
		Extra: models.Extra{
			ImageURL: fmt.Sprintf("https://live.staticflickr.com/%s/%s_%s_b.jpg", photo.Server, photo.ID, photo.Secret),
		},
	}, nil
}

// fetchFeed parses the user's public feed and uses its first entry's own
// link, id and timestamps.
func (f *Flickr) fetchFeed(ctx context.Context) (*models.Item, error) {
	feed, err := f.parser.ParseURLWithContext(f.cfg.FeedURL, ctx)
	if err != nil {
		if strings.Contains(err.Error(), "Failed to detect feed type") {
			return nil, failf(f.Name(), "feed", FailMalformed, "parse feed: %w", err)
		}
		return nil, failf(f.Name(), "feed", FailUnreachable, "fetch feed: %w", err)
	}
	if len(feed.Items) == 0 {
		return nil, failf(f.Name(), "feed", FailNoRecord, "feed has no entries")
	}

	entry := feed.Items[0]
	published := time.Now().UTC()
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.UTC()
	} else if entry.UpdatedParsed != nil {
		published = entry.UpdatedParsed.UTC()
	}

	guid := entry.GUID
	if guid == "" {
		guid = entry.Link
	}

	imageURL := ""
	if entry.Image != nil {
		imageURL = entry.Image.URL
	}
	for _, enc := range entry.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") {
			imageURL = enc.URL
			break
		}
	}

	return &models.Item{
		Kind:        models.KindPhoto,
		Title:       entry.Title,
		Link:        entry.Link,
		GUID:        guid,
		PublishedAt: published,
		Extra:       models.Extra{ImageURL: imageURL},
	}, nil
}
