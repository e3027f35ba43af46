// Package catalog builds the canonical channel collection from configured
// sources. It normalizes records from both source kinds into one shape and
// deduplicates within a source; everything downstream (filtering, grouping,
// rendering) works on catalog.Channel only.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
)

// SourceType identifies the kind of content origin.
type SourceType string

const (
	// SourceAggregator is a category+stream API source (Xtream-style).
	SourceAggregator SourceType = "aggregator"
	// SourceManifest is a flat playlist source (M3U).
	SourceManifest SourceType = "manifest"
)

// UncategorizedGroup is the sentinel group for channels whose category
// cannot be resolved.
const UncategorizedGroup = "Uncategorized"

// StreamRef locates the playable stream. Exactly one field is meaningful,
// selected by the owning channel's SourceType.
type StreamRef struct {
	StreamID int    // aggregator: numeric stream identifier
	URL      string // manifest: direct stream URL
}

// Channel is the unified record that flows through the engine.
// ID is globally unique across all sources.
type Channel struct {
	ID         string
	SourceID   string
	SourceType SourceType
	Name       string
	Group      string
	LogoURL    string
	StreamRef  StreamRef
	EPGID      string // optional external EPG key
}

// Group is a raw group descriptor produced alongside the merged channels.
type Group struct {
	Title    string
	SourceID string
}

// Source is a configured content origin.
type Source struct {
	ID       string
	Name     string
	Type     SourceType
	URL      string
	Username string // aggregator only
	Password string // aggregator only
	Enabled  bool
}

// hashID creates a short stable hash for use as a channel ID.
func hashID(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:8])
}
