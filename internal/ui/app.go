package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/odelheim/lineup/internal/catalog"
	"github.com/odelheim/lineup/internal/engine"
	"github.com/odelheim/lineup/internal/logging"
)

// searchDebounce coalesces rapid keystrokes into one rebuild.
const searchDebounce = 250 * time.Millisecond

// sentinelMargin is how many rows before the end of materialized output
// the cursor may get before the next batch is requested. This is the
// visibility sentinel: scrolling into the margin triggers the increment.
const sentinelMargin = 20

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT fetch or persist anything itself. It drives the
// engine synchronously and receives async results via messages.
type App struct {
	eng     *engine.Engine
	sources []catalog.Source

	loadCollection func(sources []catalog.Source) tea.Cmd
	runMutation    func(mut *engine.Mutation) tea.Cmd
	resolveStream  func(ch catalog.Channel) (string, error)
	play           func(url string) tea.Cmd

	sourceIdx int // index into sources, -1 = all sources
	search    textinput.Model
	searching bool
	searchGen int
	spin      spinner.Model
	cursor    int
	width     int
	height    int
	ready     bool
	status    string

	// Smooth scrolling with harmonica spring physics
	scrollSpring harmonica.Spring
	scrollPos    float64
	scrollVel    float64
	animating    bool
}

// NewApp creates the root model. loadCollection, runMutation and play
// return Cmds performing the asynchronous work; resolveStream builds the
// playable URL for a channel.
func NewApp(
	eng *engine.Engine,
	sources []catalog.Source,
	loadCollection func([]catalog.Source) tea.Cmd,
	runMutation func(*engine.Mutation) tea.Cmd,
	resolveStream func(catalog.Channel) (string, error),
	play func(string) tea.Cmd,
) App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))

	ti := textinput.New()
	ti.Placeholder = "search channels"
	ti.Prompt = "/"
	ti.CharLimit = 64

	return App{
		eng:            eng,
		sources:        sources,
		loadCollection: loadCollection,
		runMutation:    runMutation,
		resolveStream:  resolveStream,
		play:           play,
		sourceIdx:      -1,
		search:         ti,
		spin:           s,
		scrollSpring:   harmonica.NewSpring(harmonica.FPS(60), 6.0, 0.8),
	}
}

// selectedSources returns the sources for the active selection mode.
func (a App) selectedSources() []catalog.Source {
	if a.sourceIdx < 0 || a.sourceIdx >= len(a.sources) {
		return a.sources
	}
	return a.sources[a.sourceIdx : a.sourceIdx+1]
}

// Init kicks off the initial all-sources load.
func (a App) Init() tea.Cmd {
	if a.eng.BeginLoad() {
		return tea.Batch(a.spin.Tick, a.loadCollection(a.selectedSources()))
	}
	return a.spin.Tick
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case CollectionLoaded:
		a.eng.CompleteLoad(msg.Channels, msg.Err)
		a.cursor = 0
		a.scrollPos = 0
		return a, nil

	case MutationResolved:
		if msg.Mut == nil {
			return a, nil
		}
		switch msg.Mut.Kind {
		case engine.MutationFavorite:
			a.eng.ResolveFavorite(msg.Mut, msg.Err)
		case engine.MutationHidden:
			a.eng.ResolveHidden(msg.Mut, msg.Err)
		}
		if msg.Err != nil {
			a.status = "change not saved"
		}
		a.clampCursor()
		return a, nil

	case SearchDebounced:
		if msg.Gen != a.searchGen {
			return a, nil // stale timer
		}
		a.eng.Search(a.search.Value())
		a.cursor = 0
		a.scrollPos = 0
		return a, nil

	case FavoritePushed:
		a.eng.SyncFavorite(msg.SourceID, msg.ChannelID, msg.Favorite)
		a.clampCursor()
		return a, nil

	case PlaybackStarted:
		if msg.Err != nil {
			a.status = "player failed to start"
			logging.Error("player launch failed", "err", msg.Err)
		}
		return a, nil

	case frameTick:
		return a.updateScroll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		if a.eng.Loading() {
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		return a.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "j", "down":
		a.moveCursor(1)
		return a, a.animateScroll()

	case "k", "up":
		a.moveCursor(-1)
		return a, a.animateScroll()

	case "g", "home":
		a.cursor = 0
		return a, a.animateScroll()

	case "G", "end":
		// Materialize everything so the end really is the end
		for a.eng.SentinelReached() {
		}
		a.cursor = len(a.visibleRows()) - 1
		a.clampCursor()
		return a, a.animateScroll()

	case "/":
		a.searching = true
		a.search.SetValue(a.eng.SearchTerm())
		a.search.Focus()
		return a, textinput.Blink

	case "f":
		if row := a.currentRow(); row != nil && row.Kind == engine.RowChannel {
			mut := a.eng.ToggleFavorite(row.Channel.SourceID, row.Channel.ID)
			a.clampCursor()
			if mut != nil {
				return a, a.runMutation(mut)
			}
		}
		return a, nil

	case "h":
		if row := a.currentRow(); row != nil {
			var mut *engine.Mutation
			switch row.Kind {
			case engine.RowChannel:
				mut = a.eng.ToggleHidden(row.Channel.SourceID, row.Channel.ID)
			case engine.RowGroupHeader:
				mut = a.eng.ToggleGroupHidden(a.groupSourceID(row.Group), row.Group)
			}
			a.clampCursor()
			if mut != nil {
				return a, a.runMutation(mut)
			}
		}
		return a, nil

	case "H":
		a.eng.SetShowHidden(!a.eng.ShowHidden())
		a.clampCursor()
		return a, nil

	case " ":
		if row := a.currentRow(); row != nil && row.Kind == engine.RowGroupHeader {
			a.eng.ToggleGroup(row.Group)
			a.clampCursor()
		}
		return a, nil

	case "enter":
		row := a.currentRow()
		if row == nil {
			return a, nil
		}
		if row.Kind == engine.RowGroupHeader {
			a.eng.ToggleGroup(row.Group)
			a.clampCursor()
			return a, nil
		}
		return a, a.playChannel(row.Channel)

	case "n":
		if ch, ok := a.eng.SelectNext(); ok {
			return a, a.playChannel(ch)
		}
		return a, nil

	case "p":
		if ch, ok := a.eng.SelectPrevious(); ok {
			return a, a.playChannel(ch)
		}
		return a, nil

	case "tab":
		a.sourceIdx++
		if a.sourceIdx >= len(a.sources) {
			a.sourceIdx = -1
		}
		return a, a.reload()

	case "r":
		return a, a.reload()
	}

	return a, nil
}

// handleSearchKey processes input while the search field is focused.
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.searching = false
		a.search.Blur()
		a.searchGen++
		a.eng.Search("")
		a.search.SetValue("")
		a.cursor = 0
		return a, nil

	case "enter":
		a.searching = false
		a.search.Blur()
		a.searchGen++
		a.eng.Search(a.search.Value())
		a.cursor = 0
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	a.searchGen++
	gen := a.searchGen
	debounce := tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return SearchDebounced{Gen: gen}
	})
	return a, tea.Batch(cmd, debounce)
}

// reload starts a full collection reload unless one is already in flight
// (dropped, not queued).
func (a *App) reload() tea.Cmd {
	if !a.eng.BeginLoad() {
		return nil
	}
	a.cursor = 0
	a.scrollPos = 0
	return tea.Batch(a.spin.Tick, a.loadCollection(a.selectedSources()))
}

// playChannel resolves the stream URL and hands it to the player.
func (a *App) playChannel(ch catalog.Channel) tea.Cmd {
	url, err := a.resolveStream(ch)
	if err != nil {
		a.status = "stream unavailable"
		logging.Error("stream resolution failed", "channel", ch.Name, "err", err)
		return nil
	}
	a.eng.SetCurrent(ch.ID)
	a.status = "playing " + ch.Name
	return a.play(url)
}

// groupSourceID picks the source owning a group title for hide records. A
// merged group spans sources; the first member's source wins.
func (a App) groupSourceID(title string) string {
	for _, row := range a.eng.Rows() {
		if row.Kind == engine.RowChannel && row.Group == title {
			return row.Channel.SourceID
		}
	}
	if len(a.sources) > 0 {
		return a.sources[0].ID
	}
	return ""
}

// visibleRows is the display list: materialized rows minus members of
// collapsed groups.
func (a App) visibleRows() []*engine.Row {
	rows := a.eng.Rows()
	out := make([]*engine.Row, 0, len(rows))
	var collapsed bool
	for _, row := range rows {
		if row.Kind == engine.RowGroupHeader {
			collapsed = row.Collapsed
		} else if collapsed {
			continue
		}
		out = append(out, row)
	}
	return out
}

// moveCursor moves by delta and triggers the sentinel when the cursor
// scrolls into the trailing margin.
func (a *App) moveCursor(delta int) {
	visible := a.visibleRows()
	a.cursor += delta
	if a.cursor < 0 {
		a.cursor = 0
	}
	if a.cursor >= len(visible) {
		a.cursor = len(visible) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}

	if len(visible)-a.cursor <= sentinelMargin {
		a.eng.SentinelReached()
	}
}

func (a *App) clampCursor() {
	if n := len(a.visibleRows()); a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// currentRow returns the row under the cursor.
func (a App) currentRow() *engine.Row {
	visible := a.visibleRows()
	if a.cursor >= 0 && a.cursor < len(visible) {
		return visible[a.cursor]
	}
	return nil
}

// animateScroll starts the spring animation toward the cursor.
func (a *App) animateScroll() tea.Cmd {
	if a.animating {
		return nil
	}
	a.animating = true
	return frameCmd()
}

func frameCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(time.Time) tea.Msg {
		return frameTick{}
	})
}

// updateScroll advances the spring toward the cursor position.
func (a App) updateScroll() (tea.Model, tea.Cmd) {
	target := float64(a.cursor)
	a.scrollPos, a.scrollVel = a.scrollSpring.Update(a.scrollPos, a.scrollVel, target)

	if diff := a.scrollPos - target; diff > 0.01 || diff < -0.01 {
		return a, frameCmd()
	}
	a.scrollPos = target
	a.animating = false
	return a, nil
}

// View renders the application.
func (a App) View() string {
	if !a.ready {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.renderTitle())
	b.WriteString("\n")

	switch {
	case a.eng.Loading():
		b.WriteString(fmt.Sprintf("\n  %s Loading sources...\n", a.spin.View()))
	case a.eng.Err() != nil:
		b.WriteString("\n" + errorStyle.Render("  failed to load sources: "+a.eng.Err().Error()) + "\n")
		b.WriteString(dimStyle.Render("  Press r to retry.") + "\n")
	case len(a.visibleRows()) == 0:
		b.WriteString("\n" + dimStyle.Render("  No channels. Press r to reload or / to change the search.") + "\n")
	default:
		b.WriteString(a.renderRows())
	}

	b.WriteString(a.renderStatus())
	return b.String()
}

func (a App) renderTitle() string {
	name := "All sources"
	if a.sourceIdx >= 0 && a.sourceIdx < len(a.sources) {
		name = a.sources[a.sourceIdx].Name
	}
	title := headerStyle.Render("LINEUP") + dimStyle.Render(" · "+name)
	if a.searching {
		return title + "  " + a.search.View()
	}
	if term := a.eng.SearchTerm(); term != "" {
		return title + dimStyle.Render("  /"+term)
	}
	return title
}

// renderRows draws the visible window of the display list centered on the
// animated scroll position.
func (a App) renderRows() string {
	visible := a.visibleRows()
	avail := a.height - 4 // title, spacing, status
	if avail < 1 {
		avail = 1
	}

	center := int(a.scrollPos + 0.5)
	start := center - avail/2
	if start > len(visible)-avail {
		start = len(visible) - avail
	}
	if start < 0 {
		start = 0
	}
	end := start + avail
	if end > len(visible) {
		end = len(visible)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(a.renderRow(visible[i], i == a.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) renderRow(row *engine.Row, selected bool) string {
	if row.Kind == engine.RowGroupHeader {
		marker := "▾"
		if row.Collapsed {
			marker = "▸"
		}
		line := fmt.Sprintf("%s %s %s", marker,
			headerStyle.Render(row.Group),
			headerCountStyle.Render(fmt.Sprintf("(%d)", row.Count)))
		if selected {
			return selectedStyle.Render("▶ ") + line
		}
		return "  " + line
	}

	star := "  "
	if row.Favorite {
		star = favoriteStyle.Render("★ ")
	}

	style := channelStyle
	if row.Hidden {
		style = hiddenStyle
	}
	if cur, ok := a.eng.Current(); ok && cur.ID == row.Channel.ID {
		style = playingStyle
	}

	name := style.Render(truncate(row.Channel.Name, a.width-24))
	badge := sourceBadgeStyle.Render(string(row.Channel.SourceType))
	line := fmt.Sprintf("    %s%s  %s", star, name, badge)
	if selected {
		return selectedStyle.Render("▶") + line[1:]
	}
	return line
}

func (a App) renderStatus() string {
	visible := a.visibleRows()
	parts := []string{fmt.Sprintf("%d/%d", a.cursor+1, len(visible))}
	if a.eng.SentinelArmed() {
		parts = append(parts, "more…")
	}
	if a.eng.ShowHidden() {
		parts = append(parts, "hidden shown")
	}
	if a.status != "" {
		parts = append(parts, a.status)
	}
	return statusStyle.Render(" " + strings.Join(parts, " · "))
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 2 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-2]) + ".."
}
