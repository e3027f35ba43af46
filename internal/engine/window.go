package engine

import "github.com/odelheim/lineup/internal/catalog"

// DefaultBatchSize is the number of groups materialized per increment.
const DefaultBatchSize = 50

// eagerBatches bounds how many batches a full rebuild emits up front so the
// initial view has enough content to scroll into.
const eagerBatches = 10

// RowKind discriminates materialized rows.
type RowKind int

const (
	RowGroupHeader RowKind = iota
	RowChannel
)

// Row is one materialized line of output. Rows are shared by pointer
// between the engine's row list and the per-channel handle index so that a
// flag mutation can patch every visual instance in place.
type Row struct {
	Kind RowKind

	// Group header fields
	Group     string
	Collapsed bool
	Count     int // rendered members under this header

	// Channel fields
	Channel  catalog.Channel
	Favorite bool
	Hidden   bool // flagged hidden, rendered only when show-hidden is set

	header *Row // back-pointer from member to its header
}

// emitBatch materializes the next batchSize groups into rows, honoring
// hidden suppression and collapse state. Returns false when no groups
// remained (the sentinel retires).
func (e *Engine) emitBatch() bool {
	start := e.batchIndex * e.batchSize
	if start >= len(e.groups) {
		e.sentinelArmed = false
		return false
	}
	end := start + e.batchSize
	if end > len(e.groups) {
		end = len(e.groups)
	}

	for _, g := range e.groups[start:end] {
		e.emitGroup(g)
	}

	e.batchIndex++
	e.sentinelArmed = e.batchIndex*e.batchSize < len(e.groups)
	return true
}

// emitGroup appends a header row and the group's visible member rows.
func (e *Engine) emitGroup(g GroupView) {
	if !e.showHidden && e.cache.IsGroupHidden(g.Title) && g.Title != FavoritesGroup {
		return
	}

	header := &Row{
		Kind:      RowGroupHeader,
		Group:     g.Title,
		Collapsed: e.collapse.Collapsed(g.Title),
	}
	e.rows = append(e.rows, header)

	for _, ch := range g.Channels {
		hidden := e.cache.IsChannelHidden(ch.SourceID, ch.ID)
		// Favorite status overrides hidden status inside Favorites
		if hidden && !e.showHidden && g.Title != FavoritesGroup {
			continue
		}
		row := &Row{
			Kind:     RowChannel,
			Group:    g.Title,
			Channel:  ch,
			Favorite: e.cache.IsFavorite(ch.SourceID, ch.ID),
			Hidden:   hidden,
			header:   header,
		}
		e.rows = append(e.rows, row)
		e.rowIndex[ch.ID] = append(e.rowIndex[ch.ID], row)
		header.Count++
	}
}

// SentinelReached emits the next batch in response to the visibility
// sentinel. Returns true while the sentinel stays armed (more groups
// remain).
func (e *Engine) SentinelReached() bool {
	if !e.sentinelArmed {
		return false
	}
	e.emitBatch()
	return e.sentinelArmed
}

// SentinelArmed reports whether more batches remain to be emitted.
func (e *Engine) SentinelArmed() bool {
	return e.sentinelArmed
}
