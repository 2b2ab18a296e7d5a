// Package cli provides the cobra command tree for the quizbolt binary.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
	"github.com/quizbolt/quizbolt/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services holds the driving ports the commands call into.
type Services struct {
	Ingest   driving.IngestService
	Library  driving.LibraryService
	Notes    driving.NoteRenderer
	RAG      driving.RAGService
	Study    driving.StudyService
	Settings driving.SettingsService

	// Metrics serves the Prometheus exposition for `serve`. Optional.
	Metrics http.Handler
}

var (
	ingestService   driving.IngestService
	libraryService  driving.LibraryService
	noteRenderer    driving.NoteRenderer
	ragService      driving.RAGService
	studyService    driving.StudyService
	settingsService driving.SettingsService
	metricsHandler  http.Handler
)

var (
	userFlag    string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "quizbolt",
	Short: "Study assistant for your own documents",
	Long: `QuizBolt ingests PDFs, web pages and notes, then answers questions,
builds quizzes, flashcards and study notes grounded in that material.

Everything is scoped to a user (--user, or user.id in the config file).`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verboseFlag {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user to act as (default from settings)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

// SetServices wires the command tree to the core services.
func SetServices(s *Services) {
	ingestService = s.Ingest
	libraryService = s.Library
	noteRenderer = s.Notes
	ragService = s.RAG
	studyService = s.Study
	settingsService = s.Settings
	metricsHandler = s.Metrics
}

// SetVersion sets the version reported by `quizbolt version`.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. Long-running commands stop when ctx is
// cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// currentOwner resolves the acting user: the --user flag wins, then the
// configured default.
func currentOwner() (domain.OwnerID, error) {
	if userFlag != "" {
		owner := domain.OwnerID(userFlag)
		return owner, owner.Validate()
	}
	if settingsService == nil {
		return "", errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.User, settings.User.Validate()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// truncate shortens s to at most n runes for table output.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
