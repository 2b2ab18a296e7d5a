package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/quizbolt/quizbolt/internal/adapters/driving/watch"
)

var watchDebounce int

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they appear in a directory",
	Long: `Watches a directory and ingests PDF, DOCX, text, markdown and HTML
files when they are created or rewritten. A file is ingested again only
when its content changes. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", int(watch.DefaultDebounce.Milliseconds()),
		"quiet period in milliseconds before a changed file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	w, err := watch.New(args[0], owner, ingestService,
		watch.WithDebounce(time.Duration(watchDebounce)*time.Millisecond),
		watch.WithResultHandler(func(r watch.Result) {
			if r.Err != nil {
				cmd.PrintErrf("✗ %s: %v\n", r.Path, r.Err)
				return
			}
			cmd.Printf("✓ %s → %s (%d chunks)\n", r.Path, r.Ingest.Document.ID, r.Ingest.ChunkCount)
		}),
	)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s\n", args[0])
	return w.Run(cmd.Context())
}
