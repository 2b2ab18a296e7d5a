package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

var (
	ingestLabel string
	ingestJSON  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add study material to the library",
	Long: `Extract, clean, chunk and embed a source so it can be searched, asked
about and turned into quizzes, flashcards and notes.`,
}

var ingestTextCmd = &cobra.Command{
	Use:   "text [text]",
	Short: "Ingest pasted text (reads stdin when no argument is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIngestText,
}

var ingestURLCmd = &cobra.Command{
	Use:   "url [url]",
	Short: "Fetch and ingest a web page",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestURL,
}

var ingestFileCmd = &cobra.Command{
	Use:   "file [path]",
	Short: "Ingest a PDF, DOCX, HTML, Markdown or text file",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestFile,
}

func init() {
	ingestCmd.PersistentFlags().StringVarP(&ingestLabel, "label", "l", "", "library label for the document")
	ingestCmd.PersistentFlags().BoolVar(&ingestJSON, "json", false, "output result as JSON")

	ingestCmd.AddCommand(ingestTextCmd)
	ingestCmd.AddCommand(ingestURLCmd)
	ingestCmd.AddCommand(ingestFileCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestText(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	return runIngest(cmd, driving.IngestRequest{
		Kind: domain.SourceKindText,
		Text: text,
	})
}

func runIngestURL(cmd *cobra.Command, args []string) error {
	return runIngest(cmd, driving.IngestRequest{
		Kind: domain.SourceKindURL,
		URL:  strings.TrimSpace(args[0]),
	})
}

func runIngestFile(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	return runIngest(cmd, driving.IngestRequest{
		Kind:     domain.SourceKindUpload,
		FileName: filepath.Base(path),
		Content:  content,
	})
}

func runIngest(cmd *cobra.Command, req driving.IngestRequest) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	req.Label = ingestLabel
	res, err := ingestService.Ingest(cmd.Context(), owner, req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		return printJSON(cmd, res)
	}

	cmd.Printf("Ingested %q\n", res.Document.Label)
	cmd.Printf("  ID:     %s\n", res.Document.ID)
	cmd.Printf("  Kind:   %s\n", res.Document.Kind)
	cmd.Printf("  Chunks: %d\n", res.ChunkCount)
	return nil
}
