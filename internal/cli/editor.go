package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/plantview/pkg/convert"
	"github.com/matzehuels/plantview/pkg/document"
	"github.com/matzehuels/plantview/pkg/engine"
	"github.com/matzehuels/plantview/pkg/scheduler"
	"github.com/matzehuels/plantview/pkg/slots"
)

var editorCursor = lipgloss.NewStyle().Reverse(true)

// Converter is the conversion surface the editor depends on.
// *apiclient.Client implements it.
type Converter interface {
	Convert(ctx context.Context, req convert.Request) convert.Result
}

// debounceMsg fires when the quiet period armed by an edit elapses.
// The version tells the scheduler which edit the timer belongs to; timers
// superseded by later keystrokes are dropped in Update.
type debounceMsg struct {
	version uint64
}

// resultMsg carries a conversion response back into the event loop.
type resultMsg struct {
	res convert.Result
}

// slotMsg reports the outcome of a save, load, or delete.
type slotMsg struct {
	slot slots.Slot
	load bool
	err  error
}

// editorModel is the bubbletea model for the live diagram editor.
//
// The scheduler owns all ordering decisions: every keystroke mints a version
// and arms a tick, only the newest version fires, and stale responses are
// discarded on arrival. The model itself just moves text around and paints.
type editorModel struct {
	sched  *scheduler.Scheduler
	client Converter
	store  slots.Store
	ctx    context.Context

	doc    document.Document
	lines  []string
	row    int
	col    int
	format engine.Format

	previewPath string
	debounce    time.Duration

	// loadPending is set after ctrl+l; the next digit picks the slot.
	loadPending bool

	status     string
	statusKind convert.Outcome
	converting bool
	width      int
	height     int
}

func newEditorModel(ctx context.Context, client Converter, store slots.Store, initial string, format engine.Format, previewPath string, debounce time.Duration) editorModel {
	lines := strings.Split(initial, "\n")
	if initial == "" {
		lines = []string{"@startuml", "", "@enduml"}
	}
	return editorModel{
		sched:       scheduler.New(debounce),
		client:      client,
		store:       store,
		ctx:         ctx,
		doc:         document.New(strings.Join(lines, "\n")),
		lines:       lines,
		row:         min(1, len(lines)-1),
		format:      format,
		previewPath: previewPath,
		debounce:    debounce,
		status:      "type to render",
		height:      24,
		width:       80,
	}
}

func (m editorModel) Init() tea.Cmd {
	// Render whatever we started with.
	return m.scheduleEdit()
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case debounceMsg:
		content, ok := m.sched.Fire(msg.version)
		if !ok {
			// Superseded by a later keystroke.
			return m, nil
		}
		m.converting = true
		return m, m.convertCmd(content, msg.version)

	case resultMsg:
		if !m.sched.OnResult(msg.res.Version) {
			// Older than what is already on screen.
			return m, nil
		}
		m.converting = m.sched.InFlight() != 0
		m.statusKind = msg.res.Outcome
		switch msg.res.Outcome {
		case convert.Success:
			m.status = fmt.Sprintf("rendered %d bytes %s %s", len(msg.res.Payload), iconArrow, m.previewPath)
		default:
			m.status = msg.res.Message
		}
		if msg.res.HasPayload() {
			if err := os.WriteFile(m.previewPath, msg.res.Payload, 0o644); err != nil {
				m.statusKind = convert.SystemError
				m.status = fmt.Sprintf("failed to write preview: %v", err)
			}
		}
		return m, nil

	case slotMsg:
		return m.handleSlot(msg)
	}
	return m, nil
}

func (m editorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loadPending {
		m.loadPending = false
		if n := digitSlot(msg.String()); n != 0 {
			return m, m.loadCmd(n)
		}
		m.status = "load cancelled"
		m.statusKind = ""
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		return m, tea.Quit

	case "ctrl+s":
		return m, m.saveCmd()

	case "ctrl+l":
		m.loadPending = true
		m.status = "load slot: press 1-9, 0 for slot 10, esc to cancel"
		m.statusKind = ""
		return m, nil

	case "esc":
		m.status = ""
		m.statusKind = ""
		return m, nil

	case "up":
		if m.row > 0 {
			m.row--
			m.col = min(m.col, len([]rune(m.lines[m.row])))
		}
		return m, nil
	case "down":
		if m.row < len(m.lines)-1 {
			m.row++
			m.col = min(m.col, len([]rune(m.lines[m.row])))
		}
		return m, nil
	case "left":
		if m.col > 0 {
			m.col--
		} else if m.row > 0 {
			m.row--
			m.col = len([]rune(m.lines[m.row]))
		}
		return m, nil
	case "right":
		if m.col < len([]rune(m.lines[m.row])) {
			m.col++
		} else if m.row < len(m.lines)-1 {
			m.row++
			m.col = 0
		}
		return m, nil
	case "home":
		m.col = 0
		return m, nil
	case "end":
		m.col = len([]rune(m.lines[m.row]))
		return m, nil

	case "enter":
		line := []rune(m.lines[m.row])
		before, after := string(line[:m.col]), string(line[m.col:])
		m.lines[m.row] = before
		m.lines = append(m.lines[:m.row+1], append([]string{after}, m.lines[m.row+1:]...)...)
		m.row++
		m.col = 0
		return m, m.scheduleEdit()

	case "backspace":
		if m.col > 0 {
			line := []rune(m.lines[m.row])
			m.lines[m.row] = string(line[:m.col-1]) + string(line[m.col:])
			m.col--
		} else if m.row > 0 {
			prev := []rune(m.lines[m.row-1])
			m.col = len(prev)
			m.lines[m.row-1] = string(prev) + m.lines[m.row]
			m.lines = append(m.lines[:m.row], m.lines[m.row+1:]...)
			m.row--
		} else {
			return m, nil
		}
		return m, m.scheduleEdit()

	case "tab":
		return m.insert("    ")
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		return m.insert(string(msg.Runes))
	}
	return m, nil
}

func (m editorModel) insert(s string) (tea.Model, tea.Cmd) {
	if s == "" {
		s = " "
	}
	line := []rune(m.lines[m.row])
	m.lines[m.row] = string(line[:m.col]) + s + string(line[m.col:])
	m.col += len([]rune(s))
	return m, m.scheduleEdit()
}

// scheduleEdit registers the current buffer with the scheduler and arms the
// debounce tick for the freshly minted version.
func (m *editorModel) scheduleEdit() tea.Cmd {
	content := strings.Join(m.lines, "\n")
	m.doc.Touch(content)
	version, _ := m.sched.OnInput(content)
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{version: version}
	})
}

func (m editorModel) convertCmd(content string, version uint64) tea.Cmd {
	return func() tea.Msg {
		res := m.client.Convert(m.ctx, convert.Request{
			Content: content,
			Format:  m.format,
			Version: version,
		})
		return resultMsg{res: res}
	}
}

func (m editorModel) saveCmd() tea.Cmd {
	doc := m.doc
	return func() tea.Msg {
		slot, err := m.store.Save(m.ctx, doc)
		return slotMsg{slot: slot, err: err}
	}
}

func (m editorModel) loadCmd(number int) tea.Cmd {
	return func() tea.Msg {
		slot, err := m.store.Load(m.ctx, number)
		return slotMsg{slot: slot, load: true, err: err}
	}
}

func (m editorModel) handleSlot(msg slotMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = msg.err.Error()
		m.statusKind = convert.SystemError
		return m, nil
	}
	if msg.load {
		m.doc = msg.slot.Document
		m.lines = strings.Split(m.doc.Content, "\n")
		m.row = min(m.row, len(m.lines)-1)
		m.col = min(m.col, len([]rune(m.lines[m.row])))
		m.status = fmt.Sprintf("loaded slot %d", msg.slot.Number)
		m.statusKind = convert.Success
		return m, m.scheduleEdit()
	}
	m.status = fmt.Sprintf("saved to slot %d", msg.slot.Number)
	m.statusKind = convert.Success
	return m, nil
}

func (m editorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("plantview"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s preview  ctrl+s save  ctrl+l load  ctrl+c quit", m.format)))
	b.WriteString("\n\n")

	visible := m.height - 5
	if visible < 3 {
		visible = 3
	}
	start := 0
	if m.row >= visible {
		start = m.row - visible + 1
	}
	end := min(start+visible, len(m.lines))

	for i := start; i < end; i++ {
		line := m.lines[i]
		if i == m.row {
			b.WriteString(renderCursorLine(line, m.col))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

func (m editorModel) statusBar() string {
	indicator := ""
	if m.converting {
		indicator = StyleDim.Render("rendering… ")
	} else if m.sched.Pending() {
		indicator = StyleDim.Render("… ")
	}

	style := StyleDim
	switch m.statusKind {
	case convert.Success:
		style = StyleSuccess
	case convert.SyntaxError, convert.ValidationError:
		style = StyleWarning
	case convert.SystemError, convert.NetworkError, convert.Timeout:
		style = StyleError
	}
	return indicator + style.Render(m.status)
}

func renderCursorLine(line string, col int) string {
	r := []rune(line)
	if col >= len(r) {
		return line + editorCursor.Render(" ")
	}
	return string(r[:col]) + editorCursor.Render(string(r[col])) + string(r[col+1:])
}

// digitSlot maps a digit key to a slot number; "0" addresses slot 10.
// Returns 0 for anything that is not a digit.
func digitSlot(key string) int {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0
	}
	if key == "0" {
		return 10
	}
	return int(key[0] - '0')
}
