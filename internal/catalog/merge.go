package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/odelheim/lineup/internal/logging"
)

// maxConcurrentLoads limits parallel source fetches during an all-sources
// load. Merge order stays source-stable regardless of fetch completion order.
const maxConcurrentLoads = 4

// AggregatorProvider is the contract for category+stream API sources.
type AggregatorProvider interface {
	Categories(ctx context.Context, src Source) ([]Category, error)
	LiveStreams(ctx context.Context, src Source) ([]LiveStream, error)
	StreamURL(src Source, streamID int) string
}

// ManifestProvider is the contract for playlist sources. Returned channels
// already carry stable ids and group associations.
type ManifestProvider interface {
	Channels(ctx context.Context, src Source) ([]Channel, error)
}

// Merger produces one ordered channel sequence from a set of enabled
// sources, plus the raw group descriptors encountered along the way.
type Merger struct {
	agg AggregatorProvider
	man ManifestProvider
}

// NewMerger creates a Merger backed by the given providers.
func NewMerger(agg AggregatorProvider, man ManifestProvider) *Merger {
	return &Merger{agg: agg, man: man}
}

// sourceResult holds one source's fetch output before merging.
type sourceResult struct {
	channels []Channel
	groups   []Group
}

// Load fetches all given sources and merges their channels in source order.
// Any source failure aborts the whole load; no partial collection is
// returned. Fetches run in bounded parallel but the merge applies results
// in the order sources were passed in.
func (m *Merger) Load(ctx context.Context, sources []Source) ([]Channel, []Group, error) {
	results := make([]sourceResult, len(sources))

	var g errgroup.Group
	g.SetLimit(maxConcurrentLoads)
	for i, src := range sources {
		g.Go(func() error {
			res, err := m.loadSource(ctx, src)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var channels []Channel
	var groups []Group
	for _, res := range results {
		channels = append(channels, res.channels...)
		groups = append(groups, res.groups...)
	}

	logging.Debug("collection loaded", "sources", len(sources), "channels", len(channels))
	return channels, groups, nil
}

// loadSource fetches and normalizes a single source.
func (m *Merger) loadSource(ctx context.Context, src Source) (sourceResult, error) {
	switch src.Type {
	case SourceAggregator:
		return m.loadAggregator(ctx, src)
	case SourceManifest:
		return m.loadManifest(ctx, src)
	default:
		return sourceResult{}, fmt.Errorf("unknown source type %q", src.Type)
	}
}

// loadAggregator joins live streams to category titles and applies the
// first-seen-wins dedup on (group, name). Providers that publish several
// backup streams under one name collapse to the first stream listed.
func (m *Merger) loadAggregator(ctx context.Context, src Source) (sourceResult, error) {
	cats, err := m.agg.Categories(ctx, src)
	if err != nil {
		return sourceResult{}, fmt.Errorf("fetch categories: %w", err)
	}

	streams, err := m.agg.LiveStreams(ctx, src)
	if err != nil {
		return sourceResult{}, fmt.Errorf("fetch streams: %w", err)
	}

	titleByCat := make(map[string]string, len(cats))
	var res sourceResult
	for _, c := range cats {
		titleByCat[c.ID] = c.Name
		res.groups = append(res.groups, Group{Title: c.Name, SourceID: src.ID})
	}

	seen := make(map[string]bool, len(streams))
	for _, st := range streams {
		group := titleByCat[st.CategoryID]
		if group == "" {
			group = UncategorizedGroup
		}

		key := group + "\x00" + st.Name
		if seen[key] {
			continue
		}
		seen[key] = true

		res.channels = append(res.channels, Channel{
			ID:         hashID(src.ID + ":" + fmt.Sprint(st.StreamID)),
			SourceID:   src.ID,
			SourceType: SourceAggregator,
			Name:       st.Name,
			Group:      group,
			LogoURL:    st.Icon,
			StreamRef:  StreamRef{StreamID: st.StreamID},
			EPGID:      st.EPGChannelID,
		})
	}

	return res, nil
}

// loadManifest takes the provider-assigned ids and groups as-is; playlists
// are deduplicated upstream by the parser.
func (m *Merger) loadManifest(ctx context.Context, src Source) (sourceResult, error) {
	channels, err := m.man.Channels(ctx, src)
	if err != nil {
		return sourceResult{}, fmt.Errorf("fetch playlist: %w", err)
	}

	var res sourceResult
	groupSeen := make(map[string]bool)
	for _, ch := range channels {
		res.channels = append(res.channels, ch)
		if !groupSeen[ch.Group] {
			groupSeen[ch.Group] = true
			res.groups = append(res.groups, Group{Title: ch.Group, SourceID: src.ID})
		}
	}
	return res, nil
}
