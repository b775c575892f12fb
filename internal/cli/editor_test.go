package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/plantview/pkg/convert"
	"github.com/matzehuels/plantview/pkg/engine"
)

type captureConverter struct {
	requests []convert.Request
	result   convert.Result
}

func (c *captureConverter) Convert(_ context.Context, req convert.Request) convert.Result {
	c.requests = append(c.requests, req)
	res := c.result
	res.Version = req.Version
	return res
}

func newTestEditor(t *testing.T, conv Converter) editorModel {
	t.Helper()
	return newEditorModel(context.Background(), conv, nil, "@startuml\n\n@enduml", engine.PNG,
		t.TempDir()+"/preview.png", 10*time.Millisecond)
}

func typeRunes(m editorModel, s string) (editorModel, tea.Cmd) {
	var cmd tea.Cmd
	var model tea.Model = m
	for _, r := range s {
		model, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return model.(editorModel), cmd
}

func TestTypingBurstOnlyNewestVersionFires(t *testing.T) {
	conv := &captureConverter{result: convert.Result{Outcome: convert.Success, Payload: []byte{0x89, 0x50, 0x4E, 0x47}}}
	m := newTestEditor(t, conv)

	m, _ = typeRunes(m, "Alice")
	staleVersion := m.sched.Version() - 2

	// A timer from an earlier keystroke lands: must be dropped.
	model, cmd := m.Update(debounceMsg{version: staleVersion})
	m = model.(editorModel)
	if cmd != nil {
		t.Error("stale debounce should not dispatch a conversion")
	}

	// The newest timer lands: dispatches exactly one request.
	model, cmd = m.Update(debounceMsg{version: m.sched.Version()})
	m = model.(editorModel)
	if cmd == nil {
		t.Fatal("current debounce should dispatch a conversion")
	}
	msg := cmd()
	if _, ok := msg.(resultMsg); !ok {
		t.Fatalf("cmd produced %T, want resultMsg", msg)
	}
	if len(conv.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(conv.requests))
	}
	if !strings.Contains(conv.requests[0].Content, "Alice") {
		t.Errorf("request content = %q, want the latest buffer", conv.requests[0].Content)
	}
}

func TestStaleResultDoesNotOverwriteStatus(t *testing.T) {
	conv := &captureConverter{}
	m := newTestEditor(t, conv)

	model, _ := m.Update(resultMsg{res: convert.Result{Version: 7, Outcome: convert.Success, Payload: []byte{0x89, 0x50, 0x4E, 0x47}}})
	m = model.(editorModel)
	successStatus := m.status

	model, _ = m.Update(resultMsg{res: convert.Result{Version: 5, Outcome: convert.SyntaxError, Message: "old failure"}})
	m = model.(editorModel)

	if m.status != successStatus {
		t.Errorf("status = %q, stale result must not replace %q", m.status, successStatus)
	}
}

func TestEditDuringConversionWinsOverResponse(t *testing.T) {
	conv := &captureConverter{result: convert.Result{Outcome: convert.Success, Payload: []byte{0x89, 0x50, 0x4E, 0x47}}}
	m := newTestEditor(t, conv)

	m, _ = typeRunes(m, "x")
	v1 := m.sched.Version()
	model, cmd := m.Update(debounceMsg{version: v1})
	m = model.(editorModel)
	if cmd == nil {
		t.Fatal("expected a conversion dispatch")
	}

	// Another keystroke while v1 is in flight.
	m, _ = typeRunes(m, "y")
	v2 := m.sched.Version()
	model, cmd2 := m.Update(debounceMsg{version: v2})
	m = model.(editorModel)
	if cmd2 == nil {
		t.Fatal("expected a second conversion dispatch")
	}

	// v2's response lands first, then v1's straggles in.
	model, _ = m.Update(cmd2())
	m = model.(editorModel)
	fresh := m.status
	model, _ = m.Update(resultMsg{res: convert.Result{Version: v1, Outcome: convert.SyntaxError, Message: "stale"}})
	m = model.(editorModel)

	if m.status != fresh {
		t.Errorf("status = %q, the older in-flight response must be discarded", m.status)
	}
}

func TestDigitSlotMapping(t *testing.T) {
	cases := map[string]int{
		"1": 1, "9": 9, "0": 10,
		"a": 0, "esc": 0, "": 0,
	}
	for key, want := range cases {
		if got := digitSlot(key); got != want {
			t.Errorf("digitSlot(%q) = %d, want %d", key, got, want)
		}
	}
}

func TestEnterSplitsLine(t *testing.T) {
	conv := &captureConverter{}
	m := newTestEditor(t, conv)

	m, _ = typeRunes(m, "ab")
	row, col := m.row, m.col
	if col < 2 {
		t.Fatalf("col = %d, want at least 2 after typing", col)
	}

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(editorModel)

	if m.row != row+1 || m.col != 0 {
		t.Errorf("cursor = (%d,%d), want (%d,0)", m.row, m.col, row+1)
	}
	if !strings.Contains(strings.Join(m.lines, "\n"), "ab\n") {
		t.Errorf("buffer = %q, want the split to keep typed text", strings.Join(m.lines, "\n"))
	}
}
