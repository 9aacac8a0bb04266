// Package feed renders normalized items into RSS 2.0 entries and wraps
// them in a channel document.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// Entry is one item element of the output document. The custom elements
// (contentType and the source-specific ones) sit alongside the standard
// RSS fields.
type Entry struct {
	XMLName       xml.Name `xml:"item"`
	Title         string   `xml:"title"`
	Description   string   `xml:"description"`
	Link          string   `xml:"link"`
	GUID          string   `xml:"guid"`
	PubDate       string   `xml:"pubDate"`
	ContentType   string   `xml:"contentType"`
	Repo          string   `xml:"repo,omitempty"`
	CommitMessage string   `xml:"commitMessage,omitempty"`
	Rating        int      `xml:"rating,omitempty"`
	Season        int      `xml:"season,omitempty"`
	Number        int      `xml:"number,omitempty"`
	ShowTitle     string   `xml:"showTitle,omitempty"`
}

// Channel is the envelope holding feed metadata and the entries.
type Channel struct {
	Title         string  `xml:"title"`
	Link          string  `xml:"link"`
	Description   string  `xml:"description"`
	LastBuildDate string  `xml:"lastBuildDate"`
	Items         []Entry `xml:"item"`
}

// Document is the full rss root element.
type Document struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

// Meta carries channel-level metadata into Build.
type Meta struct {
	Title       string
	Description string
	Link        string
}

// Build wraps entries in a channel envelope. Entry order is preserved;
// blank entries are dropped. An empty entry list is a valid document.
func Build(meta Meta, entries []Entry, builtAt time.Time) Document {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if isBlank(e) {
			continue
		}
		kept = append(kept, e)
	}

	return Document{
		Version: "2.0",
		Channel: Channel{
			Title:         meta.Title,
			Link:          meta.Link,
			Description:   meta.Description,
			LastBuildDate: formatTime(builtAt),
			Items:         kept,
		},
	}
}

// Marshal serializes the document with an XML header.
func (d Document) Marshal() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feed document: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func isBlank(e Entry) bool {
	return strings.TrimSpace(e.Title) == "" &&
		strings.TrimSpace(e.Link) == "" &&
		strings.TrimSpace(e.GUID) == ""
}
