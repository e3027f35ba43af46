// Package ui provides the Bubble Tea TUI for lineup.
package ui

import (
	"github.com/odelheim/lineup/internal/catalog"
	"github.com/odelheim/lineup/internal/engine"
)

// CollectionLoaded is sent when a collection load finishes.
type CollectionLoaded struct {
	Channels []catalog.Channel
	Err      error
}

// MutationResolved is sent when a remote flag call finishes.
type MutationResolved struct {
	Mut *engine.Mutation
	Err error
}

// SearchDebounced fires after the search input has been idle long enough
// to commit the term. Gen guards against stale timers.
type SearchDebounced struct {
	Gen int
}

// FavoritePushed is an inbound sync from a collaborating component (EPG
// view): apply the flag state locally without a remote call.
type FavoritePushed struct {
	SourceID  string
	ChannelID string
	Favorite  bool
}

// PlaybackStarted is sent once the external player has been launched; Err
// carries a launch failure. Player exit is not observed.
type PlaybackStarted struct {
	Err error
}

// frameTick drives the scroll spring animation.
type frameTick struct{}
