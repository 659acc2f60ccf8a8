package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/holiman/uint256"

	"github.com/marvinkome/tada/internal/tada"
	"github.com/marvinkome/tada/internal/units"
)

// BoardSnapshot is one refresh of the market board.
type BoardSnapshot struct {
	Block  uint64
	Budget *uint256.Int
	Prices []tada.Price
}

// BoardFetcher loads the latest market state.
type BoardFetcher func() (BoardSnapshot, error)

type (
	boardTickMsg struct{}
	boardSpinMsg struct{}
	boardDataMsg BoardSnapshot
	boardErrMsg  struct{ err error }
)

// BoardModel is the Bubble Tea model for the live market board.
type BoardModel struct {
	fetch    BoardFetcher
	interval time.Duration

	snap     BoardSnapshot
	prev     map[string]*uint256.Int // spot price per symbol before the last refresh
	updated  time.Time
	fetching bool
	err      string

	cursor   int
	frame    int
	quitting bool
}

// NewBoard returns a board that refreshes every interval.
func NewBoard(fetch BoardFetcher, interval time.Duration) BoardModel {
	return BoardModel{fetch: fetch, interval: interval, fetching: true}
}

// RunBoard runs the board until the user quits.
func RunBoard(m BoardModel) error {
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), boardSpin())
}

func (m BoardModel) fetchCmd() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		snap, err := fetch()
		if err != nil {
			return boardErrMsg{err}
		}
		return boardDataMsg(snap)
	}
}

func (m BoardModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return boardTickMsg{} })
}

func boardSpin() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return boardSpinMsg{} })
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.snap.Prices)-1 {
				m.cursor++
			}
		case "r":
			if !m.fetching {
				m.fetching = true
				return m, m.fetchCmd()
			}
		}

	case boardSpinMsg:
		m.frame = (m.frame + 1) % len(spinFrames)
		return m, boardSpin()

	case boardTickMsg:
		if m.fetching {
			return m, nil
		}
		m.fetching = true
		return m, m.fetchCmd()

	case boardDataMsg:
		m.prev = make(map[string]*uint256.Int, len(m.snap.Prices))
		for _, p := range m.snap.Prices {
			m.prev[p.Symbol] = p.Spot
		}
		m.snap = BoardSnapshot(msg)
		m.updated = time.Now()
		m.fetching = false
		m.err = ""
		if m.cursor >= len(m.snap.Prices) {
			m.cursor = max(len(m.snap.Prices)-1, 0)
		}
		return m, m.tick()

	case boardErrMsg:
		m.fetching = false
		m.err = trimErr(msg.err.Error())
		return m, m.tick()
	}
	return m, nil
}

// trend compares a market's spot price with the previous refresh.
func (m BoardModel) trend(p tada.Price) string {
	prev, ok := m.prev[p.Symbol]
	switch {
	case !ok || prev == nil:
		return StyleMeta.Render("·")
	case p.Spot.Gt(prev):
		return StyleUp.Render("▲")
	case p.Spot.Lt(prev):
		return StyleDown.Render("▼")
	}
	return StyleMeta.Render("=")
}

func (m BoardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(fmt.Sprintf("TaDa market board  ·  block #%d", m.snap.Block)) + "\n")

	switch {
	case m.err != "":
		sb.WriteString(Err(m.err) + "\n\n")
	case m.fetching:
		sb.WriteString(StyleInfo.Render(spinFrames[m.frame]+" refreshing…") + "\n\n")
	default:
		sb.WriteString(Meta("  updated "+m.updated.Format("15:04:05")) + "\n\n")
	}

	if len(m.snap.Prices) == 0 {
		sb.WriteString(Meta("  No creator tokens yet. Create one with `tada creator create`.") + "\n")
	} else {
		budget := "-"
		if m.snap.Budget != nil {
			budget = units.FormatEther(m.snap.Budget)
		}
		t := NewTable([]Column{
			{Title: "SYMBOL", Width: 8},
			{Title: "NAME", Width: 18},
			{Title: "SPOT", Width: 14, Right: true},
			{Title: "", Width: 1},
			{Title: "SUPPLY", Width: 14, Right: true},
			{Title: "RESERVE", Width: 14, Right: true},
			{Title: "PER " + budget + " SHILL", Width: 16, Right: true},
		})
		for _, p := range m.snap.Prices {
			t.AddRow(Row{
				Symbol(p.Symbol),
				p.Name,
				Val(units.Truncate(p.Spot, units.Decimals, 6)),
				m.trend(p),
				units.Truncate(p.Supply, units.Decimals, 4),
				units.Truncate(p.Reserve, units.Decimals, 4),
				units.Truncate(p.Tokens, units.Decimals, 4),
			})
		}
		t.SelIdx = m.cursor
		sb.WriteString(t.Render())
	}

	sb.WriteString("\n" + boardControls() + "\n")
	return sb.String()
}

func boardControls() string {
	sep := StyleMeta.Render("   ")
	return StyleMeta.Render("[ ↑↓ ] navigate") + sep +
		StyleInfo.Render("[ r ]") + StyleMeta.Render(" refresh") + sep +
		StyleMeta.Render("[ q ] quit")
}
