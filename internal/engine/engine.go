package engine

import (
	"github.com/odelheim/lineup/internal/catalog"
	"github.com/odelheim/lineup/internal/flags"
	"github.com/odelheim/lineup/internal/logging"
)

// FlagStore is the external store contract for hidden/favorite records.
type FlagStore interface {
	ListHidden() ([]flags.Record, error)
	ListFavorites() ([]flags.Record, error)
	AddHidden(flags.Record) error
	RemoveHidden(flags.Record) error
	AddFavorite(flags.Record) error
	RemoveFavorite(flags.Record) error
}

// CollapseStore persists per-group collapse state across sessions.
type CollapseStore interface {
	Collapsed(title string) bool
	SetCollapsed(title string, collapsed bool)
}

// Engine owns the collection view state. All methods must be called from a
// single goroutine; asynchronous work re-enters via CompleteLoad and
// ResolveFavorite/ResolveHidden.
type Engine struct {
	flagStore FlagStore
	collapse  CollapseStore
	cache     *flags.Cache

	channels []catalog.Channel // merged canonical collection
	groups   []GroupView       // current ordered view model
	rows     []*Row
	rowIndex map[string][]*Row // channel id -> rendered instances

	batchIndex    int
	batchSize     int
	sentinelArmed bool

	searchTerm string
	showHidden bool
	currentID  string
	loading    bool
	loadErr    error
}

// New creates an Engine. batchSize <= 0 selects DefaultBatchSize.
func New(flagStore FlagStore, collapse CollapseStore, batchSize int) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Engine{
		flagStore: flagStore,
		collapse:  collapse,
		cache:     flags.NewCache(),
		rowIndex:  make(map[string][]*Row),
		batchSize: batchSize,
	}
}

// BeginLoad marks a full reload as in flight. Returns false if a load is
// already running; the new request is dropped, not queued.
func (e *Engine) BeginLoad() bool {
	if e.loading {
		logging.Debug("reload dropped, load already in flight")
		return false
	}
	e.loading = true
	return true
}

// Loading reports whether a load is in flight.
func (e *Engine) Loading() bool { return e.loading }

// Err returns the error shown in place of the list, if any.
func (e *Engine) Err() error { return e.loadErr }

// CompleteLoad commits the result of a finished load. On error the
// previously committed collection stays untouched and the error is surfaced
// in place of the list. On success the flag sets are refreshed wholesale
// and the view is rebuilt.
func (e *Engine) CompleteLoad(channels []catalog.Channel, err error) {
	e.loading = false
	if err != nil {
		e.loadErr = err
		logging.Error("collection load failed", "err", err)
		return
	}

	hidden, herr := e.flagStore.ListHidden()
	if herr != nil {
		logging.Warn("hidden list unavailable, treating as empty", "err", herr)
	}
	favs, ferr := e.flagStore.ListFavorites()
	if ferr != nil {
		logging.Warn("favorite list unavailable, treating as empty", "err", ferr)
	}

	e.loadErr = nil
	e.channels = channels
	e.cache.Refresh(hidden, favs)
	e.Render()
}

// Render performs a full rebuild: derives the view model from current
// state, clears prior rows, emits the eager leading batches and arms the
// sentinel. Called on load, search, and show-hidden changes - not on flag
// mutations.
func (e *Engine) Render() {
	e.groups = BuildView(e.channels, e.cache, e.searchTerm)
	e.rows = e.rows[:0]
	e.rowIndex = make(map[string][]*Row)
	e.batchIndex = 0
	e.sentinelArmed = true

	for i := 0; i < eagerBatches && e.sentinelArmed; i++ {
		if !e.emitBatch() {
			break
		}
	}
}

// Rows returns the materialized rows. Callers must not retain the slice
// across engine calls; row pointers stay valid and are patched in place.
func (e *Engine) Rows() []*Row { return e.rows }

// Search sets the search term and rebuilds. Debouncing rapid keystrokes is
// the caller's concern.
func (e *Engine) Search(term string) {
	if term == e.searchTerm {
		return
	}
	e.searchTerm = term
	e.Render()
}

// SearchTerm returns the active search term.
func (e *Engine) SearchTerm() string { return e.searchTerm }

// SetShowHidden flips the show-hidden toggle and rebuilds.
func (e *Engine) SetShowHidden(show bool) {
	if show == e.showHidden {
		return
	}
	e.showHidden = show
	e.Render()
}

// ShowHidden reports the show-hidden toggle.
func (e *Engine) ShowHidden() bool { return e.showHidden }

// ToggleGroup flips and persists a group's collapse state. Presentation
// only: members stay in the row list, the view skips drawing them.
func (e *Engine) ToggleGroup(title string) {
	collapsed := !e.collapse.Collapsed(title)
	e.collapse.SetCollapsed(title, collapsed)
	for _, row := range e.rows {
		if row.Kind == RowGroupHeader && row.Group == title {
			row.Collapsed = collapsed
		}
	}
}

// Visible returns the currently visible channels in view order: every
// member the renderer would eventually show, honoring hidden suppression,
// Favorites included first.
func (e *Engine) Visible() []catalog.Channel {
	var out []catalog.Channel
	for _, g := range e.groups {
		if !e.showHidden && g.Title != FavoritesGroup && e.cache.IsGroupHidden(g.Title) {
			continue
		}
		for _, ch := range g.Channels {
			if g.Title != FavoritesGroup && !e.showHidden && e.cache.IsChannelHidden(ch.SourceID, ch.ID) {
				continue
			}
			out = append(out, ch)
		}
	}
	return out
}

// Current returns the selected channel, if any.
func (e *Engine) Current() (catalog.Channel, bool) {
	return e.lookup(e.currentID)
}

// SetCurrent marks a channel as selected/playing. Unknown ids are a no-op.
func (e *Engine) SetCurrent(id string) {
	if _, ok := e.lookup(id); ok {
		e.currentID = id
	}
}

// SelectNext advances the selection through the visible flattened order and
// returns the newly selected channel.
func (e *Engine) SelectNext() (catalog.Channel, bool) {
	return e.step(1)
}

// SelectPrevious moves the selection backwards.
func (e *Engine) SelectPrevious() (catalog.Channel, bool) {
	return e.step(-1)
}

func (e *Engine) step(delta int) (catalog.Channel, bool) {
	visible := e.Visible()
	if len(visible) == 0 {
		return catalog.Channel{}, false
	}

	idx := -1
	for i, ch := range visible {
		if ch.ID == e.currentID {
			idx = i
			break
		}
	}
	if idx == -1 {
		idx = 0
	} else {
		idx = (idx + delta + len(visible)) % len(visible)
	}

	e.currentID = visible[idx].ID
	return visible[idx], true
}

// lookup finds a channel in the merged collection by id.
func (e *Engine) lookup(id string) (catalog.Channel, bool) {
	if id == "" {
		return catalog.Channel{}, false
	}
	for _, ch := range e.channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return catalog.Channel{}, false
}

// Channels returns the merged canonical collection.
func (e *Engine) Channels() []catalog.Channel { return e.channels }
