package tui

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/notehub/internal/model"
)

type formField int

const (
	fieldTitle formField = iota
	fieldContent
	fieldTag
	fieldSubmit
	fieldCancel
	fieldCount
)

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

// noteForm is the create-note modal.
type noteForm struct {
	title   textinput.Model
	content textarea.Model
	tag     model.Tag
	focus   formField

	errs       map[string]string
	serverErr  string
	submitting bool
}

func newNoteForm() noteForm {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "Title"
	ti.Cursor.SetMode(cursor.CursorStatic)

	ta := textarea.New()
	ta.Placeholder = "Content (optional)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(5)
	ta.SetWidth(48)
	ta.Cursor.SetMode(cursor.CursorStatic)

	f := noteForm{title: ti, content: ta}
	f.reset()
	return f
}

// reset restores the defaults: empty fields, tag Todo, focus on the title.
func (f *noteForm) reset() {
	defaults := model.NewCreateNoteParams()
	f.title.SetValue(defaults.Title)
	f.content.SetValue(defaults.Content)
	f.tag = defaults.Tag
	f.errs = nil
	f.serverErr = ""
	f.submitting = false
	f.setFocus(fieldTitle)
}

func (f *noteForm) params() model.CreateNoteParams {
	return model.CreateNoteParams{
		Title:   f.title.Value(),
		Content: f.content.Value(),
		Tag:     f.tag,
	}
}

// validate records per-field messages and reports whether the form may be sent.
func (f *noteForm) validate() bool {
	f.errs = nil
	err := f.params().Validate()
	if err == nil {
		return true
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		f.errs = make(map[string]string, len(verr.Fields))
		for _, name := range []string{"title", "content", "tag"} {
			if msg := verr.Field(name); msg != "" {
				f.errs[name] = msg
			}
		}
		return false
	}
	f.serverErr = err.Error()
	return false
}

func (f *noteForm) setFocus(to formField) {
	f.focus = (to + fieldCount) % fieldCount
	f.title.Blur()
	f.content.Blur()
	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldContent:
		f.content.Focus()
	}
}

func (f *noteForm) setWidth(w int) {
	w = max(min(w, 60), 20)
	f.title.Width = w
	f.content.SetWidth(w)
}

// update handles a key while the modal is open. Nothing is accepted while a
// create is in flight.
func (f noteForm) update(msg tea.KeyMsg) (noteForm, tea.Cmd, formAction) {
	if f.submitting {
		return f, nil, formNone
	}
	switch {
	case key.Matches(msg, fkeys.Cancel):
		return f, nil, formCancel
	case key.Matches(msg, fkeys.Submit):
		return f, nil, formSubmit
	case key.Matches(msg, fkeys.Next):
		f.setFocus(f.focus + 1)
		return f, nil, formNone
	case key.Matches(msg, fkeys.Prev):
		f.setFocus(f.focus - 1)
		return f, nil, formNone
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		if key.Matches(msg, fkeys.Confirm) {
			f.setFocus(fieldContent)
			return f, nil, formNone
		}
		f.title, cmd = f.title.Update(msg)
	case fieldContent:
		f.content, cmd = f.content.Update(msg)
	case fieldTag:
		switch {
		case key.Matches(msg, fkeys.TagLeft):
			f.tag = f.tag.Prev()
		case key.Matches(msg, fkeys.TagRight), msg.String() == " ":
			f.tag = f.tag.Next()
		case key.Matches(msg, fkeys.Confirm):
			f.setFocus(fieldSubmit)
		}
	case fieldSubmit:
		if key.Matches(msg, fkeys.Confirm) {
			return f, nil, formSubmit
		}
	case fieldCancel:
		if key.Matches(msg, fkeys.Confirm) {
			return f, nil, formCancel
		}
	}
	return f, cmd, formNone
}

func (f noteForm) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New note"))
	b.WriteString("\n\n")

	b.WriteString(f.label("Title", fieldTitle))
	b.WriteString("\n" + f.title.View() + "\n")
	b.WriteString(f.fieldError("title"))

	b.WriteString(f.label("Content", fieldContent))
	fmt.Fprintf(&b, " %s\n", mutedStyle.Render(fmt.Sprintf("%d/%d", utf8.RuneCountInString(f.content.Value()), model.ContentMaxLen)))
	b.WriteString(f.content.View() + "\n")
	b.WriteString(f.fieldError("content"))

	b.WriteString(f.label("Tag", fieldTag) + "\n")
	b.WriteString(f.tagRow() + "\n")
	b.WriteString(f.fieldError("tag"))

	if f.serverErr != "" {
		b.WriteString("\n" + errorStyle.Render(f.serverErr) + "\n")
	}

	submit := "Create note"
	if f.submitting {
		submit = "Creating..."
	}
	b.WriteString("\n" + lipgloss.JoinHorizontal(lipgloss.Top,
		f.button(submit, fieldSubmit), " ", f.button("Cancel", fieldCancel)))
	return b.String()
}

func (f noteForm) label(text string, field formField) string {
	if f.focus == field && !f.submitting {
		return accentStyle.Render("› " + text)
	}
	return "  " + text
}

func (f noteForm) fieldError(name string) string {
	if msg := f.errs[name]; msg != "" {
		return errorStyle.Render(msg) + "\n"
	}
	return "\n"
}

func (f noteForm) tagRow() string {
	parts := make([]string, len(model.Tags))
	for i, t := range model.Tags {
		if t == f.tag {
			parts[i] = tagStyle(t).Reverse(true).Render(" " + string(t) + " ")
		} else {
			parts[i] = mutedStyle.Render(" " + string(t) + " ")
		}
	}
	return strings.Join(parts, "")
}

func (f noteForm) button(text string, field formField) string {
	if f.submitting {
		return mutedStyle.Inherit(buttonStyle).Render(text)
	}
	if f.focus == field {
		return activeButtonStyle.Render(text)
	}
	return buttonStyle.Render(text)
}
