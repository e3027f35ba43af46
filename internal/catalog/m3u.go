package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// PlaylistClient loads and parses M3U playlists for manifest sources.
// Implements ManifestProvider. A source URL may be an http(s) URL or a
// local file path.
type PlaylistClient struct {
	client *http.Client
}

// NewPlaylistClient creates a PlaylistClient.
func NewPlaylistClient(timeout time.Duration) *PlaylistClient {
	return &PlaylistClient{client: &http.Client{Timeout: timeout}}
}

// Channels fetches and parses the playlist for a source.
func (c *PlaylistClient) Channels(ctx context.Context, src Source) ([]Channel, error) {
	r, err := c.open(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ParseM3U(r, src)
}

func (c *PlaylistClient) open(ctx context.Context, loc string) (io.ReadCloser, error) {
	if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
		f, err := os.Open(loc)
		if err != nil {
			return nil, fmt.Errorf("open playlist: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "lineup/0.1")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("playlist HTTP error: %d %s", resp.StatusCode, resp.Status)
	}
	return resp.Body, nil
}

// ParseM3U parses extended M3U content into channels for src.
// Stable ids come from tvg-id when present, else a content hash of
// name+URL. Duplicate ids within one playlist collapse, first wins.
func ParseM3U(r io.Reader, src Source) ([]Channel, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var channels []Channel
	seen := make(map[string]bool)
	var pending *Channel

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || line == "#EXTM3U":
			continue
		case strings.HasPrefix(line, "#EXTINF:"):
			ch := parseExtinf(line, src)
			pending = &ch
		case strings.HasPrefix(line, "#"):
			continue // unrecognized directive
		default:
			if pending == nil {
				continue // bare URL with no preceding EXTINF
			}
			pending.StreamRef = StreamRef{URL: line}
			if pending.ID == "" {
				pending.ID = hashID(src.ID + ":" + pending.Name + ":" + line)
			}
			if !seen[pending.ID] {
				seen[pending.ID] = true
				channels = append(channels, *pending)
			}
			pending = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}

	return channels, nil
}

// parseExtinf extracts attributes and the display name from an #EXTINF line.
func parseExtinf(line string, src Source) Channel {
	ch := Channel{
		SourceID:   src.ID,
		SourceType: SourceManifest,
		Group:      UncategorizedGroup,
	}

	// Display name follows the last comma outside the attribute section.
	body := strings.TrimPrefix(line, "#EXTINF:")
	if idx := strings.LastIndex(body, ","); idx >= 0 {
		ch.Name = strings.TrimSpace(body[idx+1:])
		body = body[:idx]
	}

	if v := attrValue(body, "tvg-id"); v != "" {
		ch.ID = hashID(src.ID + ":" + v)
		ch.EPGID = v
	}
	if v := attrValue(body, "tvg-logo"); v != "" {
		ch.LogoURL = v
	}
	if v := attrValue(body, "group-title"); v != "" {
		ch.Group = v
	}

	return ch
}

// attrValue finds a key="value" attribute in an EXTINF attribute section.
func attrValue(s, key string) string {
	marker := key + `="`
	idx := strings.Index(s, marker)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
