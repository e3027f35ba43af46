package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func panelServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/player_api.php" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("action") {
		case "get_live_categories":
			// category_id as number, the common panel quirk
			w.Write([]byte(`[{"category_id":1,"category_name":"News"},{"category_id":"2","category_name":"Sports"}]`))
		case "get_live_streams":
			w.Write([]byte(`[
				{"stream_id":101,"name":"CNN","category_id":1,"stream_icon":"http://x/cnn.png","epg_channel_id":"cnn.us"},
				{"stream_id":"102","name":"ESPN","category_id":"2"}
			]`))
		default:
			http.Error(w, "bad action", http.StatusBadRequest)
		}
	}))
}

func TestPanelClientCategories(t *testing.T) {
	srv := panelServer(t)
	defer srv.Close()

	c := NewPanelClient(5 * time.Second)
	src := Source{ID: "s1", URL: srv.URL, Username: "u", Password: "p"}

	cats, err := c.Categories(context.Background(), src)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].ID != "1" || cats[0].Name != "News" {
		t.Errorf("numeric category_id not normalized: %+v", cats[0])
	}
	if cats[1].ID != "2" || cats[1].Name != "Sports" {
		t.Errorf("unexpected category: %+v", cats[1])
	}
}

func TestPanelClientLiveStreams(t *testing.T) {
	srv := panelServer(t)
	defer srv.Close()

	c := NewPanelClient(5 * time.Second)
	src := Source{ID: "s1", URL: srv.URL, Username: "u", Password: "p"}

	streams, err := c.LiveStreams(context.Background(), src)
	if err != nil {
		t.Fatalf("LiveStreams failed: %v", err)
	}
	if len(streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(streams))
	}
	if streams[0].StreamID != 101 || streams[0].CategoryID != "1" {
		t.Errorf("unexpected stream: %+v", streams[0])
	}
	if streams[0].EPGChannelID != "cnn.us" {
		t.Errorf("epg id = %q", streams[0].EPGChannelID)
	}
	if streams[1].StreamID != 102 {
		t.Errorf("string stream_id not parsed: %+v", streams[1])
	}
}

func TestPanelClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "banned", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewPanelClient(5 * time.Second)
	src := Source{ID: "s1", URL: srv.URL}

	if _, err := c.Categories(context.Background(), src); err == nil {
		t.Fatal("expected error on HTTP 403")
	}
}

func TestStreamURL(t *testing.T) {
	c := NewPanelClient(time.Second)
	src := Source{URL: "http://panel.example/", Username: "user", Password: "pass"}

	got := c.StreamURL(src, 42)
	want := "http://panel.example/live/user/pass/42.ts"
	if got != want {
		t.Errorf("StreamURL = %q, want %q", got, want)
	}
}
