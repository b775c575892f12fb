// Package document defines the diagram document model and the conversion
// request validator.
//
// A Document is owned by the active editing session; saving it into a slot
// snapshots it (see the slots package), so later edits never alias stored
// copies.
package document

import (
	"time"

	"github.com/google/uuid"
)

// Document is a diagram source document with metadata.
type Document struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `json:"title,omitempty"`
}

// New creates a document with the given content and a fresh random ID.
// Called on the first edit of a session.
func New(content string) Document {
	now := time.Now().UTC()
	return Document{
		ID:        uuid.New(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch replaces the document content and bumps the update timestamp.
// Called on every subsequent edit.
func (d *Document) Touch(content string) {
	d.Content = content
	d.UpdatedAt = time.Now().UTC()
}
