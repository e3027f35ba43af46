package engine

import (
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/odelheim/lineup/internal/catalog"
	"github.com/odelheim/lineup/internal/flags"
)

func TestBuildViewGroupOrder(t *testing.T) {
	channels := []catalog.Channel{
		ch("z1", "Zeta", "Sports"),
		ch("a1", "Alpha", "News"),
		ch("m1", "Mid", "Movies"),
	}
	groups := BuildView(channels, flags.NewCache(), "")

	titles := make([]string, len(groups))
	for i, g := range groups {
		titles[i] = g.Title
	}
	want := []string{"Movies", "News", "Sports"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("group order = %v, want %v", titles, want)
		}
	}
}

func TestBuildViewSourceOrderWithinGroup(t *testing.T) {
	channels := []catalog.Channel{
		ch("c", "Charlie", "News"),
		ch("a", "Alpha", "News"),
		ch("b", "Bravo", "News"),
	}
	groups := BuildView(channels, flags.NewCache(), "")

	got := groups[0].Channels
	if got[0].ID != "c" || got[1].ID != "a" || got[2].ID != "b" {
		t.Errorf("members must keep source order, got %v", got)
	}
}

func TestBuildViewSearchMatchesNameAndGroup(t *testing.T) {
	channels := testChannels()

	groups := BuildView(channels, flags.NewCache(), "esp")
	if len(groups) != 1 || groups[0].Title != "Sports" {
		t.Fatalf("search esp should leave only Sports, got %v", groups)
	}
	if len(groups[0].Channels) != 1 || groups[0].Channels[0].Name != "ESPN" {
		t.Errorf("unexpected members: %v", groups[0].Channels)
	}

	// Group title matches include the whole group.
	groups = BuildView(channels, flags.NewCache(), "news")
	if len(groups) != 1 || len(groups[0].Channels) != 2 {
		t.Errorf("search news should keep both News members, got %v", groups)
	}

	// Case-insensitive.
	groups = BuildView(channels, flags.NewCache(), "CNN")
	if len(groups) != 1 || groups[0].Channels[0].Name != "CNN" {
		t.Errorf("search should be case-insensitive, got %v", groups)
	}
}

func TestBuildViewFavoritesFirstAndSorted(t *testing.T) {
	cache := flags.NewCache()
	cache.SetFavorite("s1", "cnn", true)
	cache.SetFavorite("s1", "bbc", true)

	groups := BuildView(testChannels(), cache, "")
	if groups[0].Title != FavoritesGroup {
		t.Fatalf("Favorites must come first, got %v", groups[0].Title)
	}

	favs := groups[0].Channels
	if len(favs) != 2 || favs[0].Name != "BBC" || favs[1].Name != "CNN" {
		t.Errorf("Favorites must sort name-ascending, got %v", favs)
	}

	// Originals remain in their own groups too.
	if groups[1].Title != "News" || len(groups[1].Channels) != 2 {
		t.Errorf("favorited channels must stay in their home group: %v", groups[1])
	}
}

func TestBuildViewFavoritesBypassSearch(t *testing.T) {
	cache := flags.NewCache()
	cache.SetFavorite("s1", "bbc", true)

	groups := BuildView(testChannels(), cache, "esp")
	if groups[0].Title != FavoritesGroup {
		t.Fatal("Favorites should survive a non-matching search")
	}
	if len(groups[0].Channels) != 1 || groups[0].Channels[0].Name != "BBC" {
		t.Errorf("favorite must bypass the filter, got %v", groups[0].Channels)
	}
}

func TestBuildViewNoFavoritesNoSyntheticGroup(t *testing.T) {
	groups := BuildView(testChannels(), flags.NewCache(), "")
	for _, g := range groups {
		if g.Title == FavoritesGroup {
			t.Error("empty Favorites group must not appear")
		}
	}
}

func TestBuildViewSearchSubset(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "n")
		channels := make([]catalog.Channel, n)
		for i := range channels {
			channels[i] = catalog.Channel{
				ID:       rapid.StringMatching(`id[0-9]{4}`).Draw(t, "id"),
				SourceID: "s1",
				Name:     rapid.StringMatching(`[a-z]{1,6}`).Draw(t, "name"),
				Group:    rapid.SampledFrom([]string{"A", "B", "C"}).Draw(t, "group"),
			}
		}
		term := rapid.StringMatching(`[a-z]{0,3}`).Draw(t, "term")
		cache := flags.NewCache()

		full := memberIDs(BuildView(channels, cache, ""))
		filtered := memberIDs(BuildView(channels, cache, term))

		for id := range filtered {
			if !full[id] {
				t.Fatalf("filtered view contains %q not present unfiltered", id)
			}
		}

		// Deterministic: same inputs, same output.
		again := memberIDs(BuildView(channels, cache, term))
		if len(again) != len(filtered) {
			t.Fatalf("view derivation not deterministic")
		}

		// Group order is always sorted (Favorites absent here).
		groups := BuildView(channels, cache, term)
		titles := make([]string, len(groups))
		for i, g := range groups {
			titles[i] = g.Title
		}
		if !sort.StringsAreSorted(titles) {
			t.Fatalf("group titles not sorted: %v", titles)
		}
	})
}

func memberIDs(groups []GroupView) map[string]bool {
	ids := make(map[string]bool)
	for _, g := range groups {
		for _, c := range g.Channels {
			ids[c.ID] = true
		}
	}
	return ids
}
