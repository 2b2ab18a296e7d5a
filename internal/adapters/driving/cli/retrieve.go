package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

var (
	retrieveLimit    int
	retrieveDocument string
	retrieveJSON     bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the passages most similar to a query",
	Long: `Embeds the query and lists your closest chunks by cosine distance,
without calling the language model.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveLimit, "limit", "n", domain.DefaultRetrievalLimit, "maximum number of chunks")
	retrieveCmd.Flags().StringVarP(&retrieveDocument, "doc", "d", "", "restrict to one document")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	chunks, err := ragService.Retrieve(cmd.Context(), owner, driving.RetrieveRequest{
		Query:      args[0],
		DocumentID: retrieveDocument,
		Limit:      retrieveLimit,
	})
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return printJSON(cmd, chunks)
	}

	if len(chunks) == 0 {
		cmd.Println("No matching passages.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range chunks {
		c := chunks[i]
		cmd.Printf("  [%d] %s #%d (%.3f)\n", i+1, c.DocumentID, c.Index, c.Distance)
		cmd.Printf("      %s\n", truncate(c.Text, 160))
		cmd.Println()
	}
	return nil
}
