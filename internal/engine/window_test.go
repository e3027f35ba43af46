package engine

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/odelheim/lineup/internal/catalog"
	"github.com/odelheim/lineup/internal/flags"
)

// manyGroups builds n single-channel groups with zero-padded titles so the
// lexicographic view order matches construction order.
func manyGroups(n int) []catalog.Channel {
	channels := make([]catalog.Channel, n)
	for i := range channels {
		channels[i] = ch(
			fmt.Sprintf("id%03d", i),
			fmt.Sprintf("Channel %03d", i),
			fmt.Sprintf("Group %03d", i),
		)
	}
	return channels
}

func headerCount(rows []*Row) int {
	n := 0
	for _, r := range rows {
		if r.Kind == RowGroupHeader {
			n++
		}
	}
	return n
}

func TestRenderEmitsEagerBatches(t *testing.T) {
	e := New(&memStore{}, newMemCollapse(), 1)
	e.BeginLoad()
	e.CompleteLoad(manyGroups(15), nil)

	if got := headerCount(e.Rows()); got != eagerBatches {
		t.Errorf("initial render emitted %d groups, want %d", got, eagerBatches)
	}
	if !e.SentinelArmed() {
		t.Error("sentinel should stay armed with groups remaining")
	}
}

func TestSentinelDrainsRemainingBatches(t *testing.T) {
	e := New(&memStore{}, newMemCollapse(), 1)
	e.BeginLoad()
	e.CompleteLoad(manyGroups(15), nil)

	steps := 0
	for e.SentinelReached() {
		steps++
		if steps > 100 {
			t.Fatal("sentinel never retired")
		}
	}

	if got := headerCount(e.Rows()); got != 15 {
		t.Errorf("drained render has %d groups, want 15", got)
	}
	if e.SentinelArmed() {
		t.Error("sentinel should be retired")
	}
	if e.SentinelReached() {
		t.Error("retired sentinel must be inert")
	}
}

func TestSentinelRetiredOnSmallCollection(t *testing.T) {
	e := newTestEngine(t, &memStore{}, testChannels())

	if e.SentinelArmed() {
		t.Error("collection smaller than the eager window should retire the sentinel")
	}
}

func TestEmitSkipsHiddenChannel(t *testing.T) {
	store := &memStore{
		hidden: []flags.Record{{SourceID: "s1", Type: flags.ItemChannel, ItemID: "bbc"}},
	}
	e := newTestEngine(t, store, testChannels())

	for _, r := range e.Rows() {
		if r.Kind == RowChannel && r.Channel.ID == "bbc" {
			t.Fatal("hidden channel must not be materialized")
		}
	}

	// Header counts reflect rendered members only.
	for _, r := range e.Rows() {
		if r.Kind == RowGroupHeader && r.Group == "News" && r.Count != 1 {
			t.Errorf("News count = %d, want 1", r.Count)
		}
	}
}

func TestEmitSkipsHiddenGroup(t *testing.T) {
	store := &memStore{
		hidden: []flags.Record{{SourceID: "s1", Type: flags.ItemGroup, ItemID: "News"}},
	}
	e := newTestEngine(t, store, testChannels())

	want := []string{"[Sports]", "ESPN"}
	got := rowSummary(e.Rows())
	if len(got) != len(want) || got[0] != want[0] {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestShowHiddenRendersFlagged(t *testing.T) {
	store := &memStore{
		hidden: []flags.Record{{SourceID: "s1", Type: flags.ItemChannel, ItemID: "bbc"}},
	}
	e := newTestEngine(t, store, testChannels())
	e.SetShowHidden(true)

	found := false
	for _, r := range e.Rows() {
		if r.Kind == RowChannel && r.Channel.ID == "bbc" {
			found = true
			if !r.Hidden {
				t.Error("rendered hidden channel must carry the Hidden flag")
			}
		}
	}
	if !found {
		t.Error("show-hidden should materialize flagged channels")
	}
}

func TestHiddenFavoriteStaysInFavorites(t *testing.T) {
	store := &memStore{
		hidden: []flags.Record{{SourceID: "s1", Type: flags.ItemChannel, ItemID: "bbc"}},
		favs:   []flags.Record{{SourceID: "s1", Type: flags.ItemChannel, ItemID: "bbc"}},
	}
	e := newTestEngine(t, store, testChannels())

	inFavorites, inNews := false, false
	for _, r := range e.Rows() {
		if r.Kind != RowChannel || r.Channel.ID != "bbc" {
			continue
		}
		switch r.Group {
		case FavoritesGroup:
			inFavorites = true
		case "News":
			inNews = true
		}
	}
	if !inFavorites {
		t.Error("hidden favorite must still render inside Favorites")
	}
	if inNews {
		t.Error("hidden favorite must stay suppressed in its home group")
	}
}

func TestWindowingCompleteness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nGroups := rapid.IntRange(1, 40).Draw(t, "groups")
		perGroup := rapid.IntRange(1, 4).Draw(t, "perGroup")
		batch := rapid.IntRange(1, 7).Draw(t, "batch")

		var channels []catalog.Channel
		for g := 0; g < nGroups; g++ {
			for c := 0; c < perGroup; c++ {
				channels = append(channels, ch(
					fmt.Sprintf("id%03d-%d", g, c),
					fmt.Sprintf("Name %03d-%d", g, c),
					fmt.Sprintf("Group %03d", g),
				))
			}
		}

		e := New(&memStore{}, newMemCollapse(), batch)
		e.BeginLoad()
		e.CompleteLoad(channels, nil)

		for e.SentinelReached() {
		}

		// Every channel exactly once, in view order, with its header before it.
		seen := make(map[string]int)
		var currentHeader string
		for _, r := range e.Rows() {
			switch r.Kind {
			case RowGroupHeader:
				currentHeader = r.Group
			case RowChannel:
				seen[r.Channel.ID]++
				if r.Group != currentHeader {
					t.Fatalf("channel %s rendered under %q, last header %q",
						r.Channel.ID, r.Group, currentHeader)
				}
			}
		}
		if len(seen) != len(channels) {
			t.Fatalf("drained render has %d channels, want %d", len(seen), len(channels))
		}
		for id, n := range seen {
			if n != 1 {
				t.Fatalf("channel %s rendered %d times", id, n)
			}
		}
	})
}
