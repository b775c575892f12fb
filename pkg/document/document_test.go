package document

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	doc := New("@startuml\nA->B\n@enduml")

	if doc.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("New() should mint a non-zero ID")
	}
	if doc.Content != "@startuml\nA->B\n@enduml" {
		t.Errorf("Content = %q", doc.Content)
	}
	if !doc.CreatedAt.Equal(doc.UpdatedAt) {
		t.Error("New() CreatedAt and UpdatedAt should match")
	}

	other := New("@startuml\nA->B\n@enduml")
	if doc.ID == other.ID {
		t.Error("New() should mint unique IDs")
	}
}

func TestTouch(t *testing.T) {
	doc := New("@startuml\nA->B\n@enduml")
	created := doc.CreatedAt
	time.Sleep(time.Millisecond)

	doc.Touch("@startuml\nA->C\n@enduml")

	if doc.Content != "@startuml\nA->C\n@enduml" {
		t.Errorf("Content = %q after Touch()", doc.Content)
	}
	if !doc.CreatedAt.Equal(created) {
		t.Error("Touch() must not change CreatedAt")
	}
	if !doc.UpdatedAt.After(created) {
		t.Error("Touch() should advance UpdatedAt")
	}
}
