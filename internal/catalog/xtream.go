package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

// apiJSON decodes panel responses. Compatible mode because panels emit
// numbers and strings interchangeably for the same field.
var apiJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Category is one live category from the panel API.
type Category struct {
	ID   string
	Name string
}

// LiveStream is one live stream entry from the panel API.
type LiveStream struct {
	StreamID     int
	Name         string
	CategoryID   string
	Icon         string
	EPGChannelID string
}

// flexString tolerates panels that send category ids as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexString(s)
	return nil
}

type rawCategory struct {
	CategoryID   flexString `json:"category_id"`
	CategoryName string     `json:"category_name"`
}

type rawStream struct {
	StreamID     json.Number `json:"stream_id"`
	Name         string      `json:"name"`
	CategoryID   flexString  `json:"category_id"`
	StreamIcon   string      `json:"stream_icon"`
	EPGChannelID string      `json:"epg_channel_id"`
}

// PanelClient talks to Xtream-style panel APIs. Implements
// AggregatorProvider. Safe for concurrent use.
type PanelClient struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewPanelClient creates a PanelClient. Requests are paced to avoid
// tripping panel-side flood protection; many providers ban on burst.
func NewPanelClient(timeout time.Duration) *PanelClient {
	return &PanelClient{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 2),
	}
}

// Categories fetches the live category list for a source.
func (c *PanelClient) Categories(ctx context.Context, src Source) ([]Category, error) {
	body, err := c.get(ctx, src, "get_live_categories")
	if err != nil {
		return nil, err
	}

	var raw []rawCategory
	if err := apiJSON.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	cats := make([]Category, 0, len(raw))
	for _, r := range raw {
		cats = append(cats, Category{ID: string(r.CategoryID), Name: r.CategoryName})
	}
	return cats, nil
}

// LiveStreams fetches the live stream list for a source.
func (c *PanelClient) LiveStreams(ctx context.Context, src Source) ([]LiveStream, error) {
	body, err := c.get(ctx, src, "get_live_streams")
	if err != nil {
		return nil, err
	}

	var raw []rawStream
	if err := apiJSON.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode streams: %w", err)
	}

	streams := make([]LiveStream, 0, len(raw))
	for _, r := range raw {
		id, err := r.StreamID.Int64()
		if err != nil {
			continue
		}
		streams = append(streams, LiveStream{
			StreamID:     int(id),
			Name:         r.Name,
			CategoryID:   string(r.CategoryID),
			Icon:         r.StreamIcon,
			EPGChannelID: r.EPGChannelID,
		})
	}
	return streams, nil
}

// StreamURL builds the playable URL for a live stream.
func (c *PanelClient) StreamURL(src Source, streamID int) string {
	base := strings.TrimSuffix(src.URL, "/")
	return fmt.Sprintf("%s/live/%s/%s/%s.ts",
		base, url.PathEscape(src.Username), url.PathEscape(src.Password), strconv.Itoa(streamID))
}

// get performs one rate-limited panel API call and returns the body.
func (c *PanelClient) get(ctx context.Context, src Source, action string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/player_api.php?username=%s&password=%s&action=%s",
		strings.TrimSuffix(src.URL, "/"),
		url.QueryEscape(src.Username), url.QueryEscape(src.Password), action)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "lineup/0.1")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("panel request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("panel API error: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
