package flags

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreFavoritesRoundTrip(t *testing.T) {
	s := openTestStore(t)

	r := Record{SourceID: "s1", Type: ItemChannel, ItemID: "ch1"}
	if err := s.AddFavorite(r); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}

	favs, err := s.ListFavorites()
	if err != nil {
		t.Fatalf("ListFavorites failed: %v", err)
	}
	if len(favs) != 1 || favs[0] != r {
		t.Fatalf("unexpected favorites: %v", favs)
	}

	if err := s.RemoveFavorite(r); err != nil {
		t.Fatalf("RemoveFavorite failed: %v", err)
	}
	favs, err = s.ListFavorites()
	if err != nil {
		t.Fatalf("ListFavorites failed: %v", err)
	}
	if len(favs) != 0 {
		t.Fatalf("expected empty favorites, got %v", favs)
	}
}

func TestStoreAddIdempotent(t *testing.T) {
	s := openTestStore(t)

	r := Record{SourceID: "s1", Type: ItemGroup, ItemID: "News"}
	for i := 0; i < 3; i++ {
		if err := s.AddHidden(r); err != nil {
			t.Fatalf("AddHidden failed: %v", err)
		}
	}

	hidden, err := s.ListHidden()
	if err != nil {
		t.Fatalf("ListHidden failed: %v", err)
	}
	if len(hidden) != 1 {
		t.Fatalf("repeated adds must collapse to one record, got %d", len(hidden))
	}
}

func TestStoreRemoveAbsent(t *testing.T) {
	s := openTestStore(t)

	r := Record{SourceID: "s1", Type: ItemChannel, ItemID: "nope"}
	if err := s.RemoveHidden(r); err != nil {
		t.Fatalf("removing an absent record should not error: %v", err)
	}
}

func TestStoreSeparatesTablesAndTypes(t *testing.T) {
	s := openTestStore(t)

	ch := Record{SourceID: "s1", Type: ItemChannel, ItemID: "ch1"}
	grp := Record{SourceID: "s1", Type: ItemGroup, ItemID: "News"}

	if err := s.AddHidden(ch); err != nil {
		t.Fatal(err)
	}
	if err := s.AddHidden(grp); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFavorite(ch); err != nil {
		t.Fatal(err)
	}

	hidden, err := s.ListHidden()
	if err != nil {
		t.Fatal(err)
	}
	if len(hidden) != 2 {
		t.Errorf("expected 2 hidden records, got %d", len(hidden))
	}

	favs, err := s.ListFavorites()
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 1 {
		t.Errorf("expected 1 favorite record, got %d", len(favs))
	}
}

func TestRecordKey(t *testing.T) {
	r := Record{SourceID: "s1", Type: ItemChannel, ItemID: "ch1"}
	if got := r.Key(); got != "s1/channel/ch1" {
		t.Errorf("Key() = %q", got)
	}
}
