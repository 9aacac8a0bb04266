package models

import "time"

// Kind identifies which upstream an item came from.
type Kind string

const (
	KindCommit  Kind = "code-commit"
	KindMovie   Kind = "movie-review"
	KindEpisode Kind = "episode-review"
	KindPhoto   Kind = "photo-upload"
)

// Item is the source-agnostic result of one successful fetch. It is built
// from exactly one upstream record, rendered once, and discarded.
type Item struct {
	Kind        Kind
	Title       string
	Link        string
	GUID        string
	PublishedAt time.Time
	Extra       Extra
}

// Extra carries kind-specific fields. Zero values mean "absent": a Rating
// of 0 is an unrated title, an empty ShowTitle means the item is not an
// episode, and so on.
type Extra struct {
	Repo          string
	CommitMessage string
	Rating        int
	Year          int
	Season        int
	Number        int
	ShowTitle     string
	ImageURL      string
}
