package domain

import (
	"fmt"
	"time"
)

// Document represents one ingested unit of text with its filterable
// metadata. Documents are immutable once registered: there is no update
// or delete, only a full-index rebuild.
type Document struct {
	// ID is the caller-supplied unique identifier (typically a UUID).
	// Uniqueness is scoped to the whole corpus, not a single batch.
	ID string `json:"id"`

	// Source identifies where the document came from
	// (e.g. confluence, jira, git-readme). Exact-match filterable.
	Source string `json:"source"`

	// Author is the document author. Exact-match filterable.
	Author string `json:"author"`

	// Text is the content embedded for similarity search.
	Text string `json:"text"`

	// CreatedAt is the creation timestamp. It must parse as an
	// RFC 3339 timestamp with timezone and is stored verbatim.
	CreatedAt string `json:"created_at"`

	// VectorID is the surrogate id assigned at registration time.
	// It is monotonically increasing and never reused; it joins the
	// document to its vector and its inverted-index memberships.
	VectorID int64 `json:"-"`
}

// Validate checks that every required field is present and that
// CreatedAt parses as a timestamp with timezone information.
// It returns a descriptive reason wrapped around ErrInvalidInput.
func (d Document) Validate() error {
	switch {
	case d.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidInput)
	case d.Source == "":
		return fmt.Errorf("%w: missing source", ErrInvalidInput)
	case d.Author == "":
		return fmt.Errorf("%w: missing author", ErrInvalidInput)
	case d.Text == "":
		return fmt.Errorf("%w: missing text", ErrInvalidInput)
	case d.CreatedAt == "":
		return fmt.Errorf("%w: missing created_at", ErrInvalidInput)
	}
	if _, err := time.Parse(time.RFC3339, d.CreatedAt); err != nil {
		return fmt.Errorf("%w: created_at %q is not a valid timestamp", ErrInvalidInput, d.CreatedAt)
	}
	return nil
}
