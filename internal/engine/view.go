// Package engine holds collection view state: it derives the ordered,
// grouped view model from the merged catalog, materializes it into rows in
// bounded batches, and applies optimistic flag mutations with rollback.
// The engine is single-goroutine; async work (fetching, remote flag calls)
// happens outside and re-enters through Complete*/Resolve* calls.
package engine

import (
	"sort"
	"strings"

	"github.com/odelheim/lineup/internal/catalog"
	"github.com/odelheim/lineup/internal/flags"
)

// FavoritesGroup is the synthetic group pinned first in the view.
const FavoritesGroup = "Favorites"

// GroupView is one ordered group of the view model.
type GroupView struct {
	Title    string
	Channels []catalog.Channel
}

// BuildView derives the ordered group list from the merged channels, the
// flag cache and the search term. Pure: no state is read or written.
//
// Favorites are assembled from the unfiltered channel set - they bypass the
// search filter. Within Favorites members sort name-ascending; all other
// groups keep source order. Groups sort with Favorites first, the rest
// lexicographic. Hidden suppression is not applied here; the row
// materializer skips hidden groups and channels at emit time.
func BuildView(channels []catalog.Channel, cache *flags.Cache, searchTerm string) []GroupView {
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	byTitle := make(map[string]*GroupView)
	var order []string
	for _, ch := range channels {
		if term != "" &&
			!strings.Contains(strings.ToLower(ch.Name), term) &&
			!strings.Contains(strings.ToLower(ch.Group), term) {
			continue
		}
		g, ok := byTitle[ch.Group]
		if !ok {
			g = &GroupView{Title: ch.Group}
			byTitle[ch.Group] = g
			order = append(order, ch.Group)
		}
		g.Channels = append(g.Channels, ch)
	}

	sort.Strings(order)

	var groups []GroupView
	if favs := favoritesView(channels, cache); len(favs.Channels) > 0 {
		groups = append(groups, favs)
	}
	for _, title := range order {
		groups = append(groups, *byTitle[title])
	}
	return groups
}

// favoritesView assembles the synthetic Favorites group, name-ascending.
func favoritesView(channels []catalog.Channel, cache *flags.Cache) GroupView {
	g := GroupView{Title: FavoritesGroup}
	for _, ch := range channels {
		if cache.IsFavorite(ch.SourceID, ch.ID) {
			g.Channels = append(g.Channels, ch)
		}
	}
	sort.Slice(g.Channels, func(i, j int) bool {
		return g.Channels[i].Name < g.Channels[j].Name
	})
	return g
}
