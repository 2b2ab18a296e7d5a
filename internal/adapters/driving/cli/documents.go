package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

var (
	documentsJSON bool
	documentText  bool
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage your document library",
	Long:    `List, view or delete ingested documents.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsGet,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document with its chunks, quizzes, flashcards and notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	documentsCmd.PersistentFlags().BoolVar(&documentsJSON, "json", false, "output as JSON")
	documentsGetCmd.Flags().BoolVar(&documentText, "text", false, "print the extracted text")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsGetCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	docs, err := libraryService.ListDocuments(cmd.Context(), owner)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentsJSON {
		return printJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents yet. Add one with 'quizbolt ingest'.")
		return nil
	}

	for i := range docs {
		d := docs[i]
		cmd.Printf("  %s\n", d.ID)
		cmd.Printf("    Label:   %s\n", d.Label)
		cmd.Printf("    Kind:    %s\n", d.Kind)
		cmd.Printf("    Added:   %s\n", d.CreatedAt.Local().Format("2006-01-02 15:04"))
		cmd.Printf("    Chunks:  %d  Quizzes: %d  Flashcard sets: %d  Notes: %d\n",
			d.ChunkCount, d.QuizCount, d.FlashcardCount, d.NoteCount)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentsGet(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	doc, err := libraryService.GetDocument(cmd.Context(), owner, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	var chunks []domain.TextChunk
	if documentText {
		chunks, err = libraryService.GetDocumentText(cmd.Context(), owner, doc.ID)
		if err != nil {
			return fmt.Errorf("failed to get document text: %w", err)
		}
	}

	if documentsJSON {
		return printJSON(cmd, struct {
			*domain.Document
			Text string `json:",omitempty"`
		}{doc, domain.JoinChunks(chunks)})
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Label:  %s\n", doc.Label)
	cmd.Printf("  Kind:   %s\n", doc.Kind)
	if doc.SourceRef != "" {
		cmd.Printf("  Source: %s\n", doc.SourceRef)
	}
	cmd.Printf("  Added:  %s\n", doc.CreatedAt.Local().Format("2006-01-02 15:04"))
	if documentText {
		cmd.Println()
		cmd.Println(domain.JoinChunks(chunks))
	}
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	if err := libraryService.DeleteDocument(cmd.Context(), owner, args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}
