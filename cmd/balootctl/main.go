// Command balootctl is an operator console for a running balootd: it polls
// the /admin/rooms and /admin/rooms/{id} endpoints and renders the live
// room list and a selected room's full authoritative state.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/pokerforbots/internal/baloot"
)

const pollInterval = 2 * time.Second

type CLI struct {
	Addr string `kong:"default='http://localhost:8080',help='balootd admin HTTP address'"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("balootctl"),
		kong.Description("Operator console for a running balootd"),
		kong.UsageOnError(),
	)

	model := newModel(cli.Addr)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "balootctl:", err)
		os.Exit(1)
	}
}

// roomsMsg and roomMsg carry poll results back into Update. errMsg carries a
// failed poll without killing the program, since balootd being briefly
// unreachable is routine (restart, redeploy) and not fatal to the console.
type roomsMsg []roomSummary
type roomMsg *baloot.Game
type errMsg struct{ err error }
type tickMsg struct{}

type roomSummary struct {
	RoomID      string `json:"roomId"`
	Phase       string `json:"phase"`
	SeatedCount int    `json:"seatedCount"`
}

type model struct {
	addr   string
	client *http.Client

	rooms      []roomSummary
	selected   string
	game       *baloot.Game
	lastErr    error
	quitting   bool

	roomList    viewport.Model
	detail      viewport.Model
	cmdInput    textinput.Model
	focusedPane int // 0 = room list, 1 = detail, 2 = command input

	width  int
	height int
}

func newModel(addr string) *model {
	rl := viewport.New(20, 10)
	dv := viewport.New(40, 10)

	ti := textinput.New()
	ti.Placeholder = "room id to inspect, or 'refresh' / 'quit'"
	ti.CharLimit = 64
	ti.Width = 60
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)

	return &model{
		addr:        strings.TrimRight(addr, "/"),
		client:      &http.Client{Timeout: 3 * time.Second},
		roomList:    rl,
		detail:      dv,
		cmdInput:    ti,
		focusedPane: 2,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.pollRooms(), tickCmd(), textinput.Blink)
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *model) pollRooms() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Get(m.addr + "/admin/rooms")
		if err != nil {
			return errMsg{err}
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return errMsg{err}
		}
		var rooms []roomSummary
		if err := json.Unmarshal(body, &rooms); err != nil {
			return errMsg{err}
		}
		return roomsMsg(rooms)
	}
}

func (m *model) pollRoom(roomID string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Get(m.addr + "/admin/rooms/" + roomID)
		if err != nil {
			return errMsg{err}
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return errMsg{fmt.Errorf("room %s not found", roomID)}
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return errMsg{err}
		}
		var g baloot.Game
		if err := json.Unmarshal(body, &g); err != nil {
			return errMsg{err}
		}
		return roomMsg(&g)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tickMsg:
		cmds = append(cmds, m.pollRooms(), tickCmd())
		if m.selected != "" {
			cmds = append(cmds, m.pollRoom(m.selected))
		}

	case roomsMsg:
		m.rooms = msg
		m.lastErr = nil

	case roomMsg:
		m.game = msg
		m.lastErr = nil

	case errMsg:
		m.lastErr = msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.focusedPane = (m.focusedPane + 1) % 3
			if m.focusedPane == 2 {
				m.cmdInput.Focus()
			} else {
				m.cmdInput.Blur()
			}
		case "enter":
			if m.focusedPane == 2 {
				input := strings.TrimSpace(m.cmdInput.Value())
				m.cmdInput.SetValue("")
				switch input {
				case "":
				case "quit", "q":
					m.quitting = true
					return m, tea.Quit
				case "refresh":
					cmds = append(cmds, m.pollRooms())
				default:
					m.selected = input
					cmds = append(cmds, m.pollRoom(input))
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.roomList.ScrollUp(1)
			} else if m.focusedPane == 1 {
				m.detail.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.roomList.ScrollDown(1)
			} else if m.focusedPane == 1 {
				m.detail.ScrollDown(1)
			}
		}
	}

	if m.focusedPane == 2 {
		var cmd tea.Cmd
		m.cmdInput, cmd = m.cmdInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	inputContent := m.cmdInput.View()
	if m.lastErr != nil {
		inputContent += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render(m.lastErr.Error())
	}
	inputContent += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render(
		"Tab to cycle panes • Enter to submit • Ctrl+C to quit")

	inputStyle := paneStyle(m.focusedPane == 2, m.width-2, lipgloss.Height(inputContent))
	inputPane := inputStyle.Render(inputContent)

	sidebarWidth := 30
	paneHeight := m.height - lipgloss.Height(inputPane) - 2

	m.roomList.Width = sidebarWidth - 2
	m.roomList.Height = paneHeight - 2
	m.roomList.SetContent(m.renderRoomList())
	roomListStyle := paneStyle(m.focusedPane == 0, sidebarWidth, paneHeight)
	roomListPane := roomListStyle.Render(m.roomList.View())

	detailWidth := m.width - sidebarWidth - 4
	m.detail.Width = detailWidth - 2
	m.detail.Height = paneHeight - 2
	m.detail.SetContent(m.renderDetail())
	detailStyle := paneStyle(m.focusedPane == 1, detailWidth, paneHeight)
	detailPane := detailStyle.Render(m.detail.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, roomListPane, detailPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, inputPane)
}

func paneStyle(focused bool, width, height int) lipgloss.Style {
	color := lipgloss.Color("#626262")
	if focused {
		color = lipgloss.Color("#04B575")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Width(width - 2).
		Height(height - 2)
}

func (m *model) renderRoomList() string {
	if len(m.rooms) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render("no rooms")
	}
	var b strings.Builder
	for _, r := range m.rooms {
		prefix := "  "
		if r.RoomID == m.selected {
			prefix = "▶ "
		}
		b.WriteString(fmt.Sprintf("%s%s  %s  seats=%d\n", prefix, r.RoomID, r.Phase, r.SeatedCount))
	}
	return b.String()
}

func (m *model) renderDetail() string {
	if m.selected == "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render("type a room id to inspect it")
	}
	if m.game == nil {
		return "loading..."
	}
	g := m.game
	var b strings.Builder
	fmt.Fprintf(&b, "room:  %s\n", g.RoomID)
	fmt.Fprintf(&b, "phase: %s\n", g.CurrentPhase)
	fmt.Fprintf(&b, "turn:  seat %d\n\n", g.CurrentTurnSeat)
	for seat, s := range g.Seats {
		fmt.Fprintf(&b, "seat %d: %-16s bot=%v\n", seat, s.DisplayName, s.IsBot)
	}
	if r := g.CurrentRound; r != nil {
		fmt.Fprintf(&b, "\nround mode: %v\n", r.Mode)
		if r.Bid.TrumpSuit != nil {
			fmt.Fprintf(&b, "trump: %s\n", *r.Bid.TrumpSuit)
		}
		fmt.Fprintf(&b, "raw points: %+v\n", r.RawPoints)
		if r.Sawa != nil && r.Sawa.Active {
			fmt.Fprintf(&b, "sawa: claimant=%d\n", r.Sawa.ClaimSeat)
		}
		if r.Qayd != nil && r.Qayd.State != baloot.QaydIdle {
			fmt.Fprintf(&b, "qayd: state=%v reporter=%d\n", r.Qayd.State, r.Qayd.Reporter)
		}
	}
	return b.String()
}
