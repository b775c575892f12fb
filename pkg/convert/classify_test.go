package convert

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/plantview/pkg/engine"
)

func TestClassifyRenderSuccess(t *testing.T) {
	out := &engine.Output{Data: []byte{0x89, 0x50, 0x4E, 0x47}, MIME: "image/png"}
	res := classifyRender(out, nil)

	if res.Outcome != Success {
		t.Errorf("Outcome = %q, want %q", res.Outcome, Success)
	}
	if !res.HasPayload() {
		t.Error("HasPayload() = false, want true")
	}
	if res.MIME != "image/png" {
		t.Errorf("MIME = %q", res.MIME)
	}
}

func TestClassifyRenderSyntaxError(t *testing.T) {
	out := &engine.Output{Data: []byte{1, 2}, MIME: "image/png", SyntaxError: true, Message: "Syntax Error?"}
	res := classifyRender(out, nil)

	if res.Outcome != SyntaxError {
		t.Errorf("Outcome = %q, want %q", res.Outcome, SyntaxError)
	}
	if !res.HasPayload() {
		t.Error("SyntaxError should keep the rendered error image as payload")
	}
	if res.Message == "" {
		t.Error("Message should be set")
	}
	if res.Message == "Syntax Error?" {
		t.Error("Message must be a fixed template, not raw engine text")
	}
}

func TestClassifyRenderStatusError(t *testing.T) {
	res := classifyRender(nil, &engine.StatusError{Status: 500})
	if res.Outcome != SystemError {
		t.Errorf("Outcome = %q, want %q", res.Outcome, SystemError)
	}
	if res.HasPayload() {
		t.Error("HasPayload() = true, want false")
	}
}

func TestClassifyRenderConnectError(t *testing.T) {
	err := &engine.ConnectError{Err: errors.New("dial tcp: connection refused")}
	res := classifyRender(nil, err)
	if res.Outcome != NetworkError {
		t.Errorf("Outcome = %q, want %q", res.Outcome, NetworkError)
	}
}

func TestClassifyRenderTimeout(t *testing.T) {
	res := classifyRender(nil, context.DeadlineExceeded)
	if res.Outcome != Timeout {
		t.Errorf("Outcome = %q, want %q", res.Outcome, Timeout)
	}
}

func TestMessagesNeverEmpty(t *testing.T) {
	for _, o := range []Outcome{SyntaxError, SystemError, NetworkError, Timeout} {
		if Message(o) == "" {
			t.Errorf("Message(%q) is empty", o)
		}
	}
}
