package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

// cardSeparator splits front from back in `flashcards create` arguments.
const cardSeparator = "::"

var (
	flashcardCount    int
	flashcardTitle    string
	flashcardDocument string
	flashcardJSON     bool
)

var flashcardsCmd = &cobra.Command{
	Use:     "flashcards",
	Aliases: []string{"cards"},
	Short:   "Generate and review flashcards",
}

var flashcardsGenerateCmd = &cobra.Command{
	Use:   "generate [doc-id]",
	Short: "Generate and save a flashcard set from a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlashcardsGenerate,
}

var flashcardsPreviewCmd = &cobra.Command{
	Use:   "preview [doc-id]",
	Short: "Generate flashcards without saving them",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlashcardsPreview,
}

var flashcardsCreateCmd = &cobra.Command{
	Use:   "create [title] [front::back]...",
	Short: "Save a set of hand-written cards",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runFlashcardsCreate,
}

var flashcardsShowCmd = &cobra.Command{
	Use:   "show [set-id]",
	Short: "Show a flashcard set",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlashcardsShow,
}

var flashcardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List flashcard sets",
	Args:  cobra.NoArgs,
	RunE:  runFlashcardsList,
}

var flashcardsMasterCmd = &cobra.Command{
	Use:   "master [card-id] [level]",
	Short: "Set a card's mastery level (0-5)",
	Long:  `Records how well a card is known. Levels are clamped to 0-5; 4 and above counts as mastered.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runFlashcardsMaster,
}

var flashcardsReviewCmd = &cobra.Command{
	Use:   "review [card-id] [rating]",
	Short: "Rate how well you recalled a card (1-5)",
	Long: `Logs a review and adjusts the card's mastery by one step.
A rating of 4 or 5 raises mastery, 1 or 2 lowers it, and 3 leaves it unchanged.`,
	Example: `  quizbolt flashcards review 3f2a9c 5`,
	Args:    cobra.ExactArgs(2),
	RunE:    runFlashcardsReview,
}

func init() {
	flashcardsGenerateCmd.Flags().IntVarP(&flashcardCount, "cards", "n", 10, "number of cards")
	flashcardsGenerateCmd.Flags().StringVarP(&flashcardTitle, "title", "t", "", "set title")
	flashcardsPreviewCmd.Flags().IntVarP(&flashcardCount, "cards", "n", 10, "number of cards")
	flashcardsCreateCmd.Flags().StringVarP(&flashcardDocument, "doc", "d", "", "document the cards belong to")
	flashcardsCmd.PersistentFlags().BoolVar(&flashcardJSON, "json", false, "output as JSON")

	flashcardsCmd.AddCommand(flashcardsGenerateCmd)
	flashcardsCmd.AddCommand(flashcardsPreviewCmd)
	flashcardsCmd.AddCommand(flashcardsCreateCmd)
	flashcardsCmd.AddCommand(flashcardsShowCmd)
	flashcardsCmd.AddCommand(flashcardsListCmd)
	flashcardsCmd.AddCommand(flashcardsMasterCmd)
	flashcardsCmd.AddCommand(flashcardsReviewCmd)
	rootCmd.AddCommand(flashcardsCmd)
}

func runFlashcardsGenerate(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	set, err := studyService.GenerateFlashcards(cmd.Context(), owner, driving.FlashcardRequest{
		DocumentID: args[0],
		NumCards:   flashcardCount,
		Title:      flashcardTitle,
	})
	if err != nil {
		return fmt.Errorf("flashcard generation failed: %w", err)
	}

	if flashcardJSON {
		return printJSON(cmd, set)
	}
	printFlashcardSet(cmd, set)
	return nil
}

func runFlashcardsPreview(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	cards, err := studyService.PreviewFlashcards(cmd.Context(), owner, driving.FlashcardRequest{
		DocumentID: args[0],
		NumCards:   flashcardCount,
	})
	if err != nil {
		return fmt.Errorf("flashcard generation failed: %w", err)
	}

	if flashcardJSON {
		return printJSON(cmd, cards)
	}
	printCards(cmd, cards)
	cmd.Println("Preview only; nothing was saved.")
	return nil
}

func runFlashcardsCreate(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	cards := make([]domain.Flashcard, 0, len(args)-1)
	for _, arg := range args[1:] {
		front, back, ok := strings.Cut(arg, cardSeparator)
		if !ok {
			return fmt.Errorf("invalid card %q: expected front%sback", arg, cardSeparator)
		}
		cards = append(cards, domain.Flashcard{Front: strings.TrimSpace(front), Back: strings.TrimSpace(back)})
	}

	set, err := studyService.SaveFlashcardSet(cmd.Context(), owner, driving.NewFlashcardSet{
		Title:      args[0],
		DocumentID: flashcardDocument,
		Cards:      cards,
	})
	if err != nil {
		return fmt.Errorf("failed to save flashcards: %w", err)
	}

	if flashcardJSON {
		return printJSON(cmd, set)
	}
	printFlashcardSet(cmd, set)
	return nil
}

func runFlashcardsShow(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	set, err := studyService.GetFlashcardSet(cmd.Context(), owner, args[0])
	if err != nil {
		return fmt.Errorf("failed to get flashcard set: %w", err)
	}

	if flashcardJSON {
		return printJSON(cmd, set)
	}
	printFlashcardSet(cmd, set)
	return nil
}

func runFlashcardsList(cmd *cobra.Command, _ []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	sets, err := studyService.ListFlashcardSets(cmd.Context(), owner)
	if err != nil {
		return fmt.Errorf("failed to list flashcard sets: %w", err)
	}

	if flashcardJSON {
		return printJSON(cmd, sets)
	}
	if len(sets) == 0 {
		cmd.Println("No flashcard sets yet.")
		return nil
	}
	for i := range sets {
		s := sets[i]
		cmd.Printf("  %s  %s (%d/%d mastered)\n", s.ID, s.Title, s.MasteredCount(), len(s.Cards))
	}
	return nil
}

func runFlashcardsMaster(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	level, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid mastery level %q", args[1])
	}

	if err := studyService.UpdateFlashcardMastery(cmd.Context(), owner, args[0], level); err != nil {
		return fmt.Errorf("failed to update mastery: %w", err)
	}
	cmd.Printf("Card %s mastery set to %d\n", args[0], domain.ClampMastery(level))
	return nil
}

func runFlashcardsReview(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid rating %q", args[1])
	}

	review, err := studyService.ReviewFlashcard(cmd.Context(), owner, args[0], rating)
	if err != nil {
		return fmt.Errorf("failed to review card: %w", err)
	}

	if flashcardJSON {
		return printJSON(cmd, review)
	}
	cmd.Printf("Card %s rated %d: mastery %d → %d\n", review.CardID, review.Rating, review.LevelBefore, review.LevelAfter)
	return nil
}

func printFlashcardSet(cmd *cobra.Command, set *domain.FlashcardSet) {
	cmd.Printf("%s\n", set.Title)
	cmd.Printf("ID: %s  Cards: %d  Mastered: %d\n\n", set.ID, len(set.Cards), set.MasteredCount())
	printCards(cmd, set.Cards)
}

func printCards(cmd *cobra.Command, cards []domain.Flashcard) {
	for i, c := range cards {
		cmd.Printf("%d. %s\n", i+1, c.Front)
		cmd.Printf("   → %s\n", c.Back)
		if c.ID != "" {
			cmd.Printf("   [%s] mastery %d/%d\n", c.ID, c.MasteryLevel, domain.MaxMastery)
		}
		cmd.Println()
	}
}
