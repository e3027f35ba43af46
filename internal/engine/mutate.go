package engine

import (
	"github.com/odelheim/lineup/internal/catalog"
	"github.com/odelheim/lineup/internal/flags"
	"github.com/odelheim/lineup/internal/logging"
)

// MutationKind identifies which flag set a mutation targets.
type MutationKind int

const (
	MutationFavorite MutationKind = iota
	MutationHidden
)

// Mutation describes the remote flag calls for an optimistic change that
// has already been applied locally. The host executes it asynchronously
// (see ExecuteMutation) and reports back via ResolveFavorite/ResolveHidden;
// on failure the engine reverts the local change. Favorite and channel-hide
// mutations carry one record; a group unhide carries one per source holding
// the title.
type Mutation struct {
	Kind    MutationKind
	Records []flags.Record
	Add     bool // add vs remove on the remote store

	prev bool // membership before the toggle, for rollback
}

// ExecuteMutation performs the remote flag calls. Safe to call off the
// engine goroutine: it touches only the store, never engine state.
func ExecuteMutation(store FlagStore, mut *Mutation) error {
	for _, r := range mut.Records {
		var err error
		switch {
		case mut.Kind == MutationFavorite && mut.Add:
			err = store.AddFavorite(r)
		case mut.Kind == MutationFavorite:
			err = store.RemoveFavorite(r)
		case mut.Add:
			err = store.AddHidden(r)
		default:
			err = store.RemoveHidden(r)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ToggleFavorite flips favorite membership for a channel: updates the
// cache, patches every rendered instance in place, and returns the remote
// mutation to execute. Returns nil for unknown ids (guarded no-op).
//
// Rendered output is patched rather than rebuilt, except when the flip
// creates the first favorite while no Favorites group exists in the
// output, or removes the last one - the synthetic group cannot be patched
// into or out of existence.
func (e *Engine) ToggleFavorite(sourceID, id string) *Mutation {
	ch, ok := e.lookup(id)
	if !ok || ch.SourceID != sourceID {
		return nil
	}

	prev := e.cache.IsFavorite(sourceID, id)
	e.applyFavorite(ch, !prev)

	return &Mutation{
		Kind:    MutationFavorite,
		Records: []flags.Record{{SourceID: sourceID, Type: flags.ItemChannel, ItemID: id}},
		Add:     !prev,
		prev:    prev,
	}
}

// ResolveFavorite reconciles a finished remote favorite call. Success needs
// no action; failure reverts the local and visual state to the pre-toggle
// snapshot and logs, with no user-facing interruption. A stale failure
// whose pre-toggle state matches the current state (an intervening toggle
// already restored it) is absorbed by the applyFavorite guard.
func (e *Engine) ResolveFavorite(mut *Mutation, err error) {
	if mut == nil || err == nil {
		return
	}
	rec := mut.Records[0]
	logging.Error("favorite mutation failed, rolling back", "item", rec.ItemID, "err", err)
	if ch, ok := e.lookup(rec.ItemID); ok {
		e.applyFavorite(ch, mut.prev)
	}
}

// SyncFavorite applies an inbound flag change pushed by a collaborating
// component. No remote call is made and matching state is a no-op, so a
// push can never loop.
func (e *Engine) SyncFavorite(sourceID, id string, fav bool) {
	ch, ok := e.lookup(id)
	if !ok || ch.SourceID != sourceID {
		return
	}
	if e.cache.IsFavorite(sourceID, id) == fav {
		return
	}
	e.applyFavorite(ch, fav)
}

// applyFavorite is the shared local+visual patch for favorite changes in
// either direction. It keeps the cache, the Favorites group snapshot, and
// all rendered instances consistent. Matching state is a no-op so that a
// rollback or push landing after an intervening toggle cannot insert or
// remove a second time.
func (e *Engine) applyFavorite(ch catalog.Channel, fav bool) {
	if e.cache.IsFavorite(ch.SourceID, ch.ID) == fav {
		return
	}
	e.cache.SetFavorite(ch.SourceID, ch.ID, fav)

	for _, row := range e.rowIndex[ch.ID] {
		row.Favorite = fav
	}

	if fav {
		e.addToFavoritesGroup(ch)
	} else {
		e.removeFromFavoritesGroup(ch)
	}
}

// addToFavoritesGroup inserts ch into the Favorites snapshot and rendered
// section, keeping name-ascending order. Falls back to a full rebuild when
// no Favorites group exists to patch.
func (e *Engine) addToFavoritesGroup(ch catalog.Channel) {
	headerIdx := e.favoritesHeaderIndex()
	if headerIdx < 0 {
		e.Render()
		return
	}

	// Snapshot
	g := &e.groups[0] // Favorites is always first when present
	pos := len(g.Channels)
	for i, c := range g.Channels {
		if ch.Name < c.Name {
			pos = i
			break
		}
	}
	g.Channels = append(g.Channels, catalog.Channel{})
	copy(g.Channels[pos+1:], g.Channels[pos:])
	g.Channels[pos] = ch

	// Rendered rows
	header := e.rows[headerIdx]
	insertAt := headerIdx + 1
	for insertAt < len(e.rows) && e.rows[insertAt].Kind == RowChannel && e.rows[insertAt].Group == FavoritesGroup {
		if ch.Name < e.rows[insertAt].Channel.Name {
			break
		}
		insertAt++
	}
	row := &Row{
		Kind:     RowChannel,
		Group:    FavoritesGroup,
		Channel:  ch,
		Favorite: true,
		Hidden:   e.cache.IsChannelHidden(ch.SourceID, ch.ID),
		header:   header,
	}
	e.rows = append(e.rows, nil)
	copy(e.rows[insertAt+1:], e.rows[insertAt:])
	e.rows[insertAt] = row
	e.rowIndex[ch.ID] = append(e.rowIndex[ch.ID], row)
	header.Count++
}

// removeFromFavoritesGroup removes ch from the Favorites snapshot and
// rendered section. An emptied Favorites group triggers a full rebuild so
// the synthetic group disappears.
func (e *Engine) removeFromFavoritesGroup(ch catalog.Channel) {
	if len(e.groups) > 0 && e.groups[0].Title == FavoritesGroup {
		g := &e.groups[0]
		for i, c := range g.Channels {
			if c.ID == ch.ID {
				g.Channels = append(g.Channels[:i], g.Channels[i+1:]...)
				break
			}
		}
	}

	for i, row := range e.rows {
		if row.Kind == RowChannel && row.Group == FavoritesGroup && row.Channel.ID == ch.ID {
			if row.header != nil {
				row.header.Count--
			}
			e.rows = append(e.rows[:i], e.rows[i+1:]...)
			e.dropRowHandle(ch.ID, row)
			break
		}
	}

	if idx := e.favoritesHeaderIndex(); idx >= 0 && e.rows[idx].Count == 0 {
		e.Render()
	}
}

// favoritesHeaderIndex locates the rendered Favorites header, -1 if absent.
func (e *Engine) favoritesHeaderIndex() int {
	for i, row := range e.rows {
		if row.Kind == RowGroupHeader && row.Group == FavoritesGroup {
			return i
		}
	}
	return -1
}

// dropRowHandle unregisters one rendered instance from the handle index.
func (e *Engine) dropRowHandle(id string, row *Row) {
	handles := e.rowIndex[id]
	for i, h := range handles {
		if h == row {
			e.rowIndex[id] = append(handles[:i], handles[i+1:]...)
			return
		}
	}
}

// ToggleHidden flips hidden membership for a channel. Hidden changes alter
// layout, so unlike favorites they rebuild instead of patching. Returns
// the remote mutation, nil for unknown ids.
func (e *Engine) ToggleHidden(sourceID, id string) *Mutation {
	ch, ok := e.lookup(id)
	if !ok || ch.SourceID != sourceID {
		return nil
	}

	prev := e.cache.IsChannelHidden(sourceID, id)
	e.cache.SetChannelHidden(sourceID, id, !prev)
	e.Render()

	return &Mutation{
		Kind:    MutationHidden,
		Records: []flags.Record{{SourceID: sourceID, Type: flags.ItemChannel, ItemID: id}},
		Add:     !prev,
		prev:    prev,
	}
}

// ToggleGroupHidden flips hidden membership for a group title. Hiding
// records the title under the given source; unhiding clears the title under
// every source holding a record, since a merged group stays suppressed
// while any record remains.
func (e *Engine) ToggleGroupHidden(sourceID, title string) *Mutation {
	prev := e.cache.IsGroupHidden(title)

	var records []flags.Record
	if prev {
		records = e.cache.HiddenGroupRecords(title)
	}
	if len(records) == 0 {
		records = []flags.Record{{SourceID: sourceID, Type: flags.ItemGroup, ItemID: title}}
	}

	for _, r := range records {
		e.cache.SetGroupHidden(r.SourceID, r.ItemID, !prev)
	}
	e.Render()

	return &Mutation{
		Kind:    MutationHidden,
		Records: records,
		Add:     !prev,
		prev:    prev,
	}
}

// ResolveHidden reconciles a finished remote hidden call, reverting on
// failure.
func (e *Engine) ResolveHidden(mut *Mutation, err error) {
	if mut == nil || err == nil {
		return
	}
	logging.Error("hidden mutation failed, rolling back", "item", mut.Records[0].ItemID, "err", err)
	for _, r := range mut.Records {
		switch r.Type {
		case flags.ItemChannel:
			e.cache.SetChannelHidden(r.SourceID, r.ItemID, mut.prev)
		case flags.ItemGroup:
			e.cache.SetGroupHidden(r.SourceID, r.ItemID, mut.prev)
		}
	}
	e.Render()
}
