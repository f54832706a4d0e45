package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "continue, 1, buy egg 2, cook fried rice, sleep early..."

type entryKind int

const (
	entryNarration entryKind = iota
	entryPrompt
	entryUser
	entryError
	entryInfo
)

type entry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	game         Game
	gameState    *state.GameState
	entries      []entry
	lastSummary  string
	chatViewport viewport.Model
	metaViewport viewport.Model
	input        textinput.Model
	ready        bool
	width        int
	height       int
	loading      bool

	showQuitModal bool

	progressTick int
}

type responseMsg struct {
	response *state.Response
	err      error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(game Game) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderText
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 200
	ti.Width = 50
	ti.Focus()

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		game:         game,
		input:        ti,
		chatViewport: chatVp,
		metaViewport: metaVp,
		loading:      true,
	}
}

// statBar renders value as a bar of width cells out of limit.
func statBar(value, limit, width int, color lipgloss.Color) string {
	if limit <= 0 {
		limit = 100
	}
	filled := value * width / limit
	filled = min(max(filled, 0), width)
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	return bar + promptStyle.Render(strings.Repeat("░", width-filled))
}

func statColor(value, low int) lipgloss.Color {
	switch {
	case value <= low/2:
		return lipgloss.Color("196") // red
	case value <= low:
		return lipgloss.Color("214") // yellow
	default:
		return lipgloss.Color("86") // green
	}
}

func writeMetadata(gs *state.GameState, width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("STATUS") + "\n\n")

	content.WriteString(fmt.Sprintf("Day %d of %d\n", gs.Progress.Day, gs.TotalDays))
	content.WriteString(fmt.Sprintf("%s, %s\n\n", gs.Date, gs.Progress.Period.Title()))

	barWidth := max(width-12, 5)
	for _, s := range []struct {
		label string
		value int
	}{
		{"Stamina", gs.Stats.Stamina},
		{"Health", gs.Stats.Health},
		{"Satiety", gs.Stats.Satiety},
	} {
		content.WriteString(fmt.Sprintf("%-8s %3d\n", s.label, s.value))
		content.WriteString(statBar(s.value, 100, barWidth, statColor(s.value, 30)) + "\n")
	}
	content.WriteString(fmt.Sprintf("Mood     %s (%d)\n", gs.Stats.MoodLabel, gs.Stats.Mood))
	content.WriteString(fmt.Sprintf("Money    $%d\n\n", gs.Stats.Money))

	if len(gs.Warnings) > 0 {
		for _, w := range gs.Warnings {
			content.WriteString(errorStyle.Render("! "+w) + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString(titleStyle.Render("PANTRY") + "\n")
	if len(gs.Inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, e := range gs.Inventory {
		content.WriteString(fmt.Sprintf("• %s x%d\n", e.Item, e.Count))
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy summary\n")

	return content.String()
}

func formatPrompt(p state.Prompt, width int) string {
	var b strings.Builder
	if p.Title != "" {
		b.WriteString(titleStyle.Render(p.Title) + "\n")
	}
	b.WriteString(wordwrap.String(p.Text, width) + "\n")
	for i, c := range p.Choices {
		line := fmt.Sprintf("  %d. %s", i+1, c.Text)
		if c.Disabled {
			line = disabledStyle.Render(line)
			if c.Reason != "" {
				line += promptStyle.Render(" (" + c.Reason + ")")
			}
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// writeChatContent rebuilds the transcript for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := max(m.chatViewport.Width-6, 20)

	var content strings.Builder
	content.WriteString(titleStyle.Render("SURVIVAL KITCHEN") + "\n\n")
	content.WriteString("Type a command or a choice number. /help lists commands.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, e := range m.entries {
		switch e.kind {
		case entryNarration:
			content.WriteString(narratorStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		case entryUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, chatWidth-5) + "\n\n")
		case entryError:
			content.WriteString(errorStyle.Render(wordwrap.String("Error: "+e.text, chatWidth)) + "\n\n")
		case entryInfo:
			content.WriteString(promptStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		case entryPrompt:
			content.WriteString(e.text + "\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) addResponse(resp *state.Response) {
	for _, page := range resp.Interlude {
		m.entries = append(m.entries, entry{entryNarration, page})
	}
	for _, msg := range resp.Messages {
		m.entries = append(m.entries, entry{entryNarration, msg})
	}
	m.gameState = resp.State
	m.lastSummary = resp.State.Prompt.Text
	m.entries = append(m.entries, entry{entryPrompt, formatPrompt(resp.State.Prompt, max(m.chatViewport.Width-6, 20))})
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.start(), progressTick())
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.input.Width = chatWidth - 8
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		if m.gameState != nil {
			m.metaViewport.SetContent(writeMetadata(m.gameState, m.metaViewport.Width))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.input.Value())
			if input == "" {
				return m, nil
			}
			m.input.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			return m.submit(input)
		}

	case responseMsg:
		m.loading = false
		if msg.err != nil {
			m.entries = append(m.entries, entry{entryError, msg.err.Error()})
		} else {
			m.addResponse(msg.response)
			m.metaViewport.SetContent(writeMetadata(m.gameState, m.metaViewport.Width))
			if m.gameState.IsOver() {
				m.entries = append(m.entries, entry{entryInfo, "The game is over. Press Ctrl+C to quit, /copy to copy the summary."})
			}
		}
		m.writeChatContent()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.input, tiCmd = m.input.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// submit parses typed input against the current prompt and sends it.
func (m ConsoleUI) submit(input string) (tea.Model, tea.Cmd) {
	m.entries = append(m.entries, entry{entryUser, input})
	if m.gameState == nil {
		m.writeChatContent()
		return m, nil
	}

	cmd, err := state.ParseCommand(input, m.gameState.Prompt, m.game.Catalog())
	if err != nil {
		m.entries = append(m.entries, entry{entryError, err.Error()})
		m.writeChatContent()
		return m, nil
	}

	m.loading = true
	m.progressTick = 0
	m.writeChatContent()
	return m, tea.Batch(m.execute(cmd), progressTick())
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/help":
		m.entries = append(m.entries, entry{entryInfo, `Commands:
• /help - Show this help
• /copy - Copy the latest summary to the clipboard
• /quit - Quit game

How to play:
• continue (or c) moves past a message
• A number picks from the listed choices
• buy <item> [count] while shopping, or type a shop name to go there
• cook <recipe> in the kitchen
• sleep early | sleep normal | stay up late in the evening
• skip passes on shopping; leave walks out of a shop`})

	case "/copy":
		if m.lastSummary == "" {
			m.entries = append(m.entries, entry{entryInfo, "Nothing to copy yet."})
			break
		}
		if err := clipboard.WriteAll(m.lastSummary); err != nil {
			m.entries = append(m.entries, entry{entryError, "clipboard unavailable: " + err.Error()})
			break
		}
		m.entries = append(m.entries, entry{entryInfo, "Copied the latest summary to the clipboard."})

	case "/quit":
		return m, tea.Quit

	default:
		m.entries = append(m.entries, entry{entryError, "unknown command " + input + ", try /help"})
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) start() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resp, err := m.game.Start(ctx)
		return responseMsg{resp, err}
	}
}

func (m ConsoleUI) execute(cmd state.Command) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resp, err := m.game.Execute(ctx, cmd)
		return responseMsg{resp, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.input.Focus()
				return m, textinput.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress will be lost.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  " + loadingStyle.Render("Initializing...")
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.input.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	usable = min(max(usable, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
