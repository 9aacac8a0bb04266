package feed

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testMeta = Meta{
	Title:       "My activity",
	Description: "Latest activity",
	Link:        "http://localhost:8080/feed.xml",
}

func TestBuildEmpty(t *testing.T) {
	doc := Build(testMeta, nil, time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC))

	require.Equal(t, "2.0", doc.Version)
	require.Equal(t, "My activity", doc.Channel.Title)
	require.Equal(t, "Mon, 10 Jun 2024 21:00:00 +0000", doc.Channel.LastBuildDate)
	require.Empty(t, doc.Channel.Items)

	data, err := doc.Marshal()
	require.NoError(t, err)

	var parsed Document
	require.NoError(t, xml.Unmarshal(data, &parsed))
	require.Empty(t, parsed.Channel.Items)
	require.Equal(t, "My activity", parsed.Channel.Title)
}

func TestBuildPreservesOrderAndCount(t *testing.T) {
	entries := []Entry{
		{Title: "first", Link: "https://a", GUID: "a", ContentType: "code-commit"},
		{Title: "second", Link: "https://b", GUID: "b", ContentType: "movie-review"},
		{Title: "third", Link: "https://c", GUID: "c", ContentType: "photo-upload"},
	}

	doc := Build(testMeta, entries, time.Now())
	require.Len(t, doc.Channel.Items, 3)
	require.Equal(t, "first", doc.Channel.Items[0].Title)
	require.Equal(t, "second", doc.Channel.Items[1].Title)
	require.Equal(t, "third", doc.Channel.Items[2].Title)
}

func TestBuildDropsBlankEntries(t *testing.T) {
	entries := []Entry{
		{Title: "   ", Link: "", GUID: " "},
		{Title: "kept", Link: "https://a", GUID: "a"},
	}

	doc := Build(testMeta, entries, time.Now())
	require.Len(t, doc.Channel.Items, 1)
	require.Equal(t, "kept", doc.Channel.Items[0].Title)
}

func TestMarshalRoundTripsCustomElements(t *testing.T) {
	entries := []Entry{{
		Title:       "[octocat/widget] Fix widget overflow",
		Description: "Pushed to octocat/widget",
		Link:        "https://github.com/octocat/widget/commit/ccc333",
		GUID:        "ccc333",
		PubDate:     "Mon, 10 Jun 2024 21:00:00 +0000",
		ContentType: "code-commit",
		Repo:        "octocat/widget",
	}}

	data, err := Build(testMeta, entries, time.Now()).Marshal()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), xml.Header))
	require.Contains(t, string(data), `<rss version="2.0">`)
	require.Contains(t, string(data), "<contentType>code-commit</contentType>")
	require.Contains(t, string(data), "<repo>octocat/widget</repo>")

	var parsed Document
	require.NoError(t, xml.Unmarshal(data, &parsed))
	require.Len(t, parsed.Channel.Items, 1)
	require.Equal(t, "octocat/widget", parsed.Channel.Items[0].Repo)
}

func TestMarshalOmitsEmptyCustomElements(t *testing.T) {
	entries := []Entry{{
		Title:       "Heat (1995)",
		Link:        "https://trakt.tv/movies/481",
		GUID:        "trakt-481-1",
		ContentType: "movie-review",
	}}

	data, err := Build(testMeta, entries, time.Now()).Marshal()
	require.NoError(t, err)
	require.NotContains(t, string(data), "<rating>")
	require.NotContains(t, string(data), "<season>")
	require.NotContains(t, string(data), "<showTitle>")
}
