package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/notehub"
	"github.com/idilsaglam/notehub/internal/ui"
)

func newListCmd(e *env) *cobra.Command {
	var (
		page   int
		search string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Print one page of notes",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return usagef("--page must be at least 1")
			}
			svc, err := e.service(cmd.Context(), e.logger)
			if err != nil {
				return err
			}
			entry, err := svc.List(cmd.Context(), svc.Key(page, search))
			if err != nil {
				return fmt.Errorf("list notes: %w", err)
			}
			if asJSON {
				enc := json.NewEncoder(e.streams.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(entry.Data)
			}
			printPage(e, entry.Data, page, search)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&search, "search", "", "full-text search term")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw page as JSON")
	return cmd
}

func printPage(e *env, p *model.NotesPage, page int, search string) {
	t := ui.Current()
	header := t.Title.Sprint("Notes")
	if search != "" {
		header += "  " + t.Muted.Sprintf("search %q", search)
	}
	if p.TotalPages > 1 {
		header += "  " + t.Accent.Sprintf("page %d/%d", page, p.TotalPages)
	}

	lines := []string{header, ""}
	if len(p.Notes) == 0 {
		lines = append(lines, t.Muted.Sprint("No notes found"))
	}
	for _, n := range p.Notes {
		lines = append(lines, ui.NoteLine(n, 72))
	}
	if dots := ui.PageDots(page, p.TotalPages); dots != "" {
		lines = append(lines, "", dots)
	}
	ui.Panel(e.streams.Out, lines)
}

func newAddCmd(e *env) *cobra.Command {
	var title, content, tag string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Example: `  notehub add --title "Buy milk" --tag Shopping
  notehub add --title "Standup" --content "Daily sync" --tag Meeting`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := model.NewCreateNoteParams()
			params.Title, params.Content = title, content
			if tag != "" {
				t, err := model.ParseTag(tag)
				if err != nil {
					return usageError{err}
				}
				params.Tag = t
			}
			if err := params.Validate(); err != nil {
				return err
			}

			svc, err := e.service(cmd.Context(), e.logger)
			if err != nil {
				return err
			}
			n, err := svc.Create(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("create note: %w", err)
			}
			ui.OK(e.streams.Out, fmt.Sprintf("created note %d: %s [%s]", n.ID, n.Title, n.Tag))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "note title (3-50 characters)")
	cmd.Flags().StringVar(&content, "content", "", "note body (up to 500 characters)")
	cmd.Flags().StringVar(&tag, "tag", string(model.DefaultTag), "one of Todo, Work, Personal, Meeting, Shopping")
	return cmd
}

func newRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return usagef("rm: not a note id: %s", args[0])
			}
			svc, err := e.service(cmd.Context(), e.logger)
			if err != nil {
				return err
			}
			n, err := svc.Delete(cmd.Context(), id)
			if errors.Is(err, notehub.ErrNotFound) {
				return fmt.Errorf("note %d not found", id)
			}
			if err != nil {
				return fmt.Errorf("delete note %d: %w", id, err)
			}
			ui.OK(e.streams.Out, fmt.Sprintf("deleted note %d: %s", n.ID, n.Title))
			return nil
		},
	}
}
