package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Tag classifies a note. The server accepts exactly the values in Tags.
type Tag string

const (
	TagTodo     Tag = "Todo"
	TagWork     Tag = "Work"
	TagPersonal Tag = "Personal"
	TagMeeting  Tag = "Meeting"
	TagShopping Tag = "Shopping"
)

// Tags lists every tag in the order the creation form offers them.
var Tags = []Tag{TagTodo, TagWork, TagPersonal, TagMeeting, TagShopping}

// DefaultTag is preselected in a fresh creation form.
const DefaultTag = TagTodo

// ParseTag matches s against the known tags, ignoring case.
func ParseTag(s string) (Tag, error) {
	for _, t := range Tags {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tag %q", s)
}

// Next returns the tag after t, wrapping around. Unknown tags map to the first.
func (t Tag) Next() Tag { return t.shift(1) }

// Prev returns the tag before t, wrapping around.
func (t Tag) Prev() Tag { return t.shift(-1) }

func (t Tag) shift(by int) Tag {
	for i, tag := range Tags {
		if tag == t {
			return Tags[(i+by+len(Tags))%len(Tags)]
		}
	}
	return Tags[0]
}

// Note is a server-owned record. The client never edits one in place.
type Note struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Tag       Tag        `json:"tag"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// NotesPage is one page of a list response.
type NotesPage struct {
	Notes      []Note `json:"notes"`
	TotalPages int    `json:"totalPages"`
}

// Contains reports whether a note with the given id is on the page.
func (p *NotesPage) Contains(id int) bool {
	if p == nil {
		return false
	}
	for _, n := range p.Notes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Field limits of the creation form.
const (
	TitleMinLen   = 3
	TitleMaxLen   = 50
	ContentMaxLen = 500
)

// CreateNoteParams is the body of a create request.
type CreateNoteParams struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     Tag    `json:"tag"`
}

// NewCreateNoteParams returns the form defaults.
func NewCreateNoteParams() CreateNoteParams {
	return CreateNoteParams{Tag: DefaultTag}
}

// Validate checks the form rules. Lengths are counted in runes.
// A failure is always a *ValidationError.
func (p CreateNoteParams) Validate() error {
	tags := make([]interface{}, len(Tags))
	for i, t := range Tags {
		tags[i] = t
	}
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Title,
			validation.Required.Error("Title is required"),
			validation.RuneLength(TitleMinLen, 0).Error(fmt.Sprintf("Minimum %d characters", TitleMinLen)),
			validation.RuneLength(0, TitleMaxLen).Error(fmt.Sprintf("Maximum %d characters", TitleMaxLen)),
		),
		validation.Field(&p.Content,
			validation.RuneLength(0, ContentMaxLen).Error(fmt.Sprintf("Maximum %d characters", ContentMaxLen)),
		),
		validation.Field(&p.Tag,
			validation.Required.Error("Tag is required"),
			validation.In(tags...).Error("Invalid tag"),
		),
	)
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}

// ValidationError reports local form-field violations.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "invalid note: " + e.Fields.Error()
}

func (e *ValidationError) Unwrap() error { return e.Fields }

// Field returns the message for one field (by JSON name), or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	if err, ok := e.Fields[name]; ok && err != nil {
		return err.Error()
	}
	return ""
}
