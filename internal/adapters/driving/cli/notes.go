package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

var (
	noteStyle    string
	noteTitle    string
	noteHTML     bool
	noteDocument string
	noteFile     string
	noteJSON     bool
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Generate and manage Markdown study notes",
}

var notesGenerateCmd = &cobra.Command{
	Use:   "generate [doc-id]",
	Short: "Generate study notes from a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesGenerate,
}

var notesShowCmd = &cobra.Command{
	Use:   "show [note-id]",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesShow,
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	RunE:  runNotesList,
}

var notesEditCmd = &cobra.Command{
	Use:   "edit [note-id]",
	Short: "Replace a note's content",
	Long:  `Replaces the note body with the contents of --file, or stdin when no file is given.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesEdit,
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete [note-id]",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesDelete,
}

func init() {
	notesGenerateCmd.Flags().StringVarP(&noteStyle, "style", "s", string(domain.NoteStyleSummary), "outline, summary or detailed")
	notesGenerateCmd.Flags().StringVarP(&noteTitle, "title", "t", "", "note title")
	notesShowCmd.Flags().BoolVar(&noteHTML, "html", false, "render as sanitised HTML")
	notesListCmd.Flags().StringVarP(&noteDocument, "doc", "d", "", "only notes for this document")
	notesEditCmd.Flags().StringVarP(&noteFile, "file", "f", "", "read the new content from a file")
	notesCmd.PersistentFlags().BoolVar(&noteJSON, "json", false, "output as JSON")

	notesCmd.AddCommand(notesGenerateCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesEditCmd)
	notesCmd.AddCommand(notesDeleteCmd)
	rootCmd.AddCommand(notesCmd)
}

func runNotesGenerate(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	note, err := studyService.GenerateNotes(cmd.Context(), owner, driving.NoteRequest{
		DocumentID: args[0],
		Style:      domain.NoteStyle(noteStyle),
		Title:      noteTitle,
	})
	if err != nil {
		return fmt.Errorf("note generation failed: %w", err)
	}

	if noteJSON {
		return printJSON(cmd, note)
	}
	cmd.Printf("Saved note %s (%s)\n\n", note.ID, note.Title)
	cmd.Println(note.Content)
	return nil
}

func runNotesShow(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	if noteHTML {
		if noteRenderer == nil {
			return errors.New("note renderer not configured")
		}
		html, err := noteRenderer.RenderNoteHTML(cmd.Context(), owner, args[0])
		if err != nil {
			return fmt.Errorf("failed to render note: %w", err)
		}
		cmd.Println(html)
		return nil
	}

	note, err := studyService.GetNote(cmd.Context(), owner, args[0])
	if err != nil {
		return fmt.Errorf("failed to get note: %w", err)
	}
	if noteJSON {
		return printJSON(cmd, note)
	}
	cmd.Printf("# %s\n\n", note.Title)
	cmd.Println(note.Content)
	return nil
}

func runNotesList(cmd *cobra.Command, _ []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	notes, err := studyService.ListNotes(cmd.Context(), owner, noteDocument)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if noteJSON {
		return printJSON(cmd, notes)
	}
	if len(notes) == 0 {
		cmd.Println("No notes yet.")
		return nil
	}
	for i := range notes {
		n := notes[i]
		cmd.Printf("  %s  %s (%s, updated %s)\n", n.ID, n.Title, n.Style, n.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runNotesEdit(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	var content []byte
	if noteFile != "" {
		content, err = os.ReadFile(noteFile)
	} else {
		content, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	if err := studyService.UpdateNote(cmd.Context(), owner, args[0], string(content)); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	cmd.Printf("Updated note %s\n", args[0])
	return nil
}

func runNotesDelete(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	if err := studyService.DeleteNote(cmd.Context(), owner, args[0]); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	cmd.Printf("Deleted note %s\n", args[0])
	return nil
}
