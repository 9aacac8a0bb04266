package feed

import (
	"fmt"
	"time"

	"github.com/akarpov/lifefeed/internal/models"
)

// timeFormat is RFC 1123 with a numeric zone; every timestamp in the
// document is normalized to UTC before formatting.
const timeFormat = time.RFC1123Z

// Render converts a normalized item into the RSS entry for it. It is pure
// and total: given a well-formed item it always succeeds.
func Render(it models.Item) Entry {
	e := Entry{
		Link:        it.Link,
		GUID:        it.GUID,
		PubDate:     formatTime(it.PublishedAt),
		ContentType: string(it.Kind),
	}

	switch it.Kind {
	case models.KindCommit:
		e.Title = fmt.Sprintf("[%s] %s", it.Extra.Repo, it.Title)
		e.Description = fmt.Sprintf("Pushed to %s: %s", it.Extra.Repo, it.Extra.CommitMessage)
		e.Repo = it.Extra.Repo
		e.CommitMessage = it.Extra.CommitMessage
	case models.KindMovie:
		e.Title = fmt.Sprintf("%s (%d)", it.Title, it.Extra.Year)
		e.Description = fmt.Sprintf("Watched %s (%d)", it.Title, it.Extra.Year)
		if it.Extra.Rating > 0 {
			e.Title += fmt.Sprintf(" - Rated %d/10", it.Extra.Rating)
			e.Description += fmt.Sprintf(" and rated it %d/10", it.Extra.Rating)
			e.Rating = it.Extra.Rating
		}
	case models.KindEpisode:
		e.Title = fmt.Sprintf("%s - %s (Season %d / Episode %d)",
			it.Extra.ShowTitle, it.Title, it.Extra.Season, it.Extra.Number)
		e.Description = fmt.Sprintf("Watched episode %q of %s (season %d, episode %d)",
			it.Title, it.Extra.ShowTitle, it.Extra.Season, it.Extra.Number)
		if it.Extra.Rating > 0 {
			e.Description += fmt.Sprintf(" and rated it %d/10", it.Extra.Rating)
			e.Rating = it.Extra.Rating
		}
		e.Season = it.Extra.Season
		e.Number = it.Extra.Number
		e.ShowTitle = it.Extra.ShowTitle
	case models.KindPhoto:
		title := it.Title
		if title == "" {
			title = "Untitled photo"
		}
		e.Title = title
		if it.Extra.ImageURL != "" {
			e.Description = fmt.Sprintf(`<img src="%s" alt="%s"/>`, it.Extra.ImageURL, title)
		} else {
			e.Description = fmt.Sprintf("Uploaded a new photo: %s", title)
		}
	default:
		e.Title = it.Title
		e.Description = it.Title
	}

	return e
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}
