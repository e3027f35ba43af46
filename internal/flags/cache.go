package flags

import "strings"

// Cache is the in-memory view of the hidden and favorite sets. It is owned
// by the single-goroutine engine and is not locked; refresh it wholesale at
// collection load, then mutate incrementally as flags are toggled.
type Cache struct {
	hidden       map[string]bool // exact composite keys
	favorite     map[string]bool // exact composite keys, channels only
	hiddenGroups map[string]bool // group titles, across sources
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	c := &Cache{}
	c.Refresh(nil, nil)
	return c
}

// Refresh replaces the cached sets wholesale.
func (c *Cache) Refresh(hidden, favorites []Record) {
	c.hidden = make(map[string]bool, len(hidden))
	c.favorite = make(map[string]bool, len(favorites))
	c.hiddenGroups = make(map[string]bool)

	for _, r := range hidden {
		c.hidden[r.Key()] = true
		if r.Type == ItemGroup {
			c.hiddenGroups[r.ItemID] = true
		}
	}
	for _, r := range favorites {
		c.favorite[r.Key()] = true
	}
}

// IsChannelHidden reports whether a channel is individually hidden.
func (c *Cache) IsChannelHidden(sourceID, channelID string) bool {
	return c.hidden[Record{SourceID: sourceID, Type: ItemChannel, ItemID: channelID}.Key()]
}

// IsGroupHidden reports whether a group title is hidden under any source.
// Groups merge across sources in the view, so a title flagged anywhere
// suppresses the merged group.
func (c *Cache) IsGroupHidden(title string) bool {
	return c.hiddenGroups[title]
}

// IsFavorite reports favorite membership for a channel.
func (c *Cache) IsFavorite(sourceID, channelID string) bool {
	return c.favorite[Record{SourceID: sourceID, Type: ItemChannel, ItemID: channelID}.Key()]
}

// SetFavorite flips favorite membership locally.
func (c *Cache) SetFavorite(sourceID, channelID string, fav bool) {
	key := Record{SourceID: sourceID, Type: ItemChannel, ItemID: channelID}.Key()
	if fav {
		c.favorite[key] = true
	} else {
		delete(c.favorite, key)
	}
}

// SetChannelHidden flips hidden membership for a channel locally.
func (c *Cache) SetChannelHidden(sourceID, channelID string, hidden bool) {
	key := Record{SourceID: sourceID, Type: ItemChannel, ItemID: channelID}.Key()
	if hidden {
		c.hidden[key] = true
	} else {
		delete(c.hidden, key)
	}
}

// SetGroupHidden flips hidden membership for a group title locally.
func (c *Cache) SetGroupHidden(sourceID, title string, hidden bool) {
	key := Record{SourceID: sourceID, Type: ItemGroup, ItemID: title}.Key()
	if hidden {
		c.hidden[key] = true
		c.hiddenGroups[title] = true
	} else {
		delete(c.hidden, key)
		// Title may still be flagged under another source
		stillHidden := false
		for k := range c.hidden {
			if r, ok := parseGroupKey(k); ok && r.ItemID == title {
				stillHidden = true
				break
			}
		}
		if !stillHidden {
			delete(c.hiddenGroups, title)
		}
	}
}

// HiddenGroupRecords returns every stored group-hide record for a title,
// one per source. Unhiding a merged group must clear all of them.
func (c *Cache) HiddenGroupRecords(title string) []Record {
	var out []Record
	for k := range c.hidden {
		if r, ok := parseGroupKey(k); ok && r.ItemID == title {
			out = append(out, r)
		}
	}
	return out
}

// parseGroupKey reconstructs the record behind a composite key, if the key
// is a group record. Key layout: sourceID/type/itemID; source ids never
// contain '/'.
func parseGroupKey(key string) (Record, bool) {
	slash := strings.IndexByte(key, '/')
	if slash < 0 {
		return Record{}, false
	}
	sourceID, rest := key[:slash], key[slash+1:]
	slash = strings.IndexByte(rest, '/')
	if slash < 0 {
		return Record{}, false
	}
	if rest[:slash] != string(ItemGroup) {
		return Record{}, false
	}
	return Record{SourceID: sourceID, Type: ItemGroup, ItemID: rest[slash+1:]}, true
}
