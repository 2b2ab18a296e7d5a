package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

var (
	quizQuestions   int
	quizDifficulty  string
	quizTitle       string
	quizShowAnswers bool
	quizJSON        bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate and take multiple-choice quizzes",
}

var quizGenerateCmd = &cobra.Command{
	Use:   "generate [doc-id]",
	Short: "Generate a quiz from a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuizGenerate,
}

var quizShowCmd = &cobra.Command{
	Use:   "show [quiz-id]",
	Short: "Show a quiz",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuizShow,
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quizzes",
	Args:  cobra.NoArgs,
	RunE:  runQuizList,
}

var quizSubmitCmd = &cobra.Command{
	Use:   "submit [quiz-id] [question=option]...",
	Short: "Submit answers and get a score",
	Long: `Grades a quiz attempt. Answers are given as question=option pairs, where
question is the question number (1-based) or ID and option is a letter (A-D)
or number (1-4). Unanswered questions count as incorrect.

With no answers and a terminal on stdin, the quiz is taken interactively.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuizSubmit,
}

var quizAttemptsCmd = &cobra.Command{
	Use:   "attempts [quiz-id]",
	Short: "List recorded attempts for a quiz",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuizAttempts,
}

func init() {
	quizGenerateCmd.Flags().IntVarP(&quizQuestions, "questions", "q", 5, "number of questions")
	quizGenerateCmd.Flags().StringVar(&quizDifficulty, "difficulty", string(domain.DifficultyMedium), "easy, medium or hard")
	quizGenerateCmd.Flags().StringVarP(&quizTitle, "title", "t", "", "quiz title")
	quizShowCmd.Flags().BoolVar(&quizShowAnswers, "answers", false, "reveal correct answers")
	quizCmd.PersistentFlags().BoolVar(&quizJSON, "json", false, "output as JSON")

	quizCmd.AddCommand(quizGenerateCmd)
	quizCmd.AddCommand(quizShowCmd)
	quizCmd.AddCommand(quizListCmd)
	quizCmd.AddCommand(quizSubmitCmd)
	quizCmd.AddCommand(quizAttemptsCmd)
	rootCmd.AddCommand(quizCmd)
}

func runQuizGenerate(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	quiz, err := studyService.GenerateQuiz(cmd.Context(), owner, driving.QuizRequest{
		DocumentID:   args[0],
		NumQuestions: quizQuestions,
		Difficulty:   domain.Difficulty(quizDifficulty),
		Title:        quizTitle,
	})
	if err != nil {
		return fmt.Errorf("quiz generation failed: %w", err)
	}

	if quizJSON {
		return printJSON(cmd, quiz)
	}
	printQuiz(cmd, quiz, false)
	return nil
}

func runQuizShow(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	quiz, err := studyService.GetQuiz(cmd.Context(), owner, args[0])
	if err != nil {
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if quizJSON {
		return printJSON(cmd, quiz)
	}
	printQuiz(cmd, quiz, quizShowAnswers)
	return nil
}

func runQuizList(cmd *cobra.Command, _ []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	quizzes, err := studyService.ListQuizzes(cmd.Context(), owner)
	if err != nil {
		return fmt.Errorf("failed to list quizzes: %w", err)
	}

	if quizJSON {
		return printJSON(cmd, quizzes)
	}
	if len(quizzes) == 0 {
		cmd.Println("No quizzes yet.")
		return nil
	}
	for i := range quizzes {
		q := quizzes[i]
		cmd.Printf("  %s  %s (%s, %d questions)\n", q.ID, q.Title, q.Difficulty, len(q.Questions))
	}
	return nil
}

func runQuizSubmit(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	quiz, err := studyService.GetQuiz(cmd.Context(), owner, args[0])
	if err != nil {
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	var answers map[string]int
	var duration time.Duration
	if len(args) == 1 && stdinIsTerminal() {
		start := time.Now()
		answers = takeQuiz(cmd, quiz)
		duration = time.Since(start)
	} else {
		answers, err = parseAnswers(quiz, args[1:])
		if err != nil {
			return err
		}
	}

	attempt, err := studyService.SubmitQuiz(cmd.Context(), owner, quiz.ID, answers, duration)
	if err != nil {
		return fmt.Errorf("failed to submit quiz: %w", err)
	}

	if quizJSON {
		return printJSON(cmd, attempt)
	}

	cmd.Printf("Score: %d%% (%d/%d correct)\n\n", attempt.Score, attempt.TotalCorrect, attempt.TotalQuestions)
	for i, a := range attempt.Answers {
		mark := "✗"
		if a.IsCorrect {
			mark = "✓"
		}
		cmd.Printf("  %s %d. %s\n", mark, i+1, a.CorrectAnswer)
		if !a.IsCorrect && a.Explanation != "" {
			cmd.Printf("      %s\n", a.Explanation)
		}
	}
	return nil
}

func runQuizAttempts(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	attempts, err := studyService.ListQuizAttempts(cmd.Context(), owner, args[0])
	if err != nil {
		return fmt.Errorf("failed to list attempts: %w", err)
	}

	if quizJSON {
		return printJSON(cmd, attempts)
	}
	if len(attempts) == 0 {
		cmd.Println("No attempts yet.")
		return nil
	}
	for i := range attempts {
		a := attempts[i]
		cmd.Printf("  %s  %3d%%  %d/%d  %s\n", a.CompletedAt.Local().Format("2006-01-02 15:04"),
			a.Score, a.TotalCorrect, a.TotalQuestions, a.Duration.Round(time.Second))
	}
	return nil
}

func printQuiz(cmd *cobra.Command, quiz *domain.Quiz, answers bool) {
	cmd.Printf("%s\n", quiz.Title)
	cmd.Printf("ID: %s  Difficulty: %s\n\n", quiz.ID, quiz.Difficulty)
	for i, q := range quiz.Questions {
		cmd.Printf("%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			marker := " "
			if answers && j == q.CorrectOption {
				marker = "*"
			}
			cmd.Printf("  %s %c) %s\n", marker, 'A'+j, opt)
		}
		if answers && q.Explanation != "" {
			cmd.Printf("    %s\n", q.Explanation)
		}
		cmd.Println()
	}
}

// takeQuiz prompts for each question on stdin. Blank or invalid input
// leaves the question unanswered.
func takeQuiz(cmd *cobra.Command, quiz *domain.Quiz) map[string]int {
	reader := bufio.NewReader(cmd.InOrStdin())
	answers := make(map[string]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		cmd.Printf("%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			cmd.Printf("   %c) %s\n", 'A'+j, opt)
		}
		cmd.Print("Answer: ")
		if choice, err := parseOption(readLine(reader), len(q.Options)); err == nil {
			answers[q.ID] = choice
		}
		cmd.Println()
	}
	return answers
}

// parseAnswers maps question=option pairs to question IDs and 0-based options.
func parseAnswers(quiz *domain.Quiz, pairs []string) (map[string]int, error) {
	answers := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid answer %q: expected question=option", pair)
		}

		q := findQuestion(quiz, strings.TrimSpace(key))
		if q == nil {
			return nil, fmt.Errorf("invalid answer %q: no such question", pair)
		}
		choice, err := parseOption(value, len(q.Options))
		if err != nil {
			return nil, fmt.Errorf("invalid answer %q: %w", pair, err)
		}
		answers[q.ID] = choice
	}
	return answers, nil
}

func findQuestion(quiz *domain.Quiz, key string) *domain.QuizQuestion {
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(quiz.Questions) {
		return &quiz.Questions[n-1]
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == key {
			return &quiz.Questions[i]
		}
	}
	return nil
}

// parseOption accepts a letter (A, b, ...) or a 1-based number and returns
// the 0-based option index.
func parseOption(s string, options int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty option")
	}

	var idx int
	if n, err := strconv.Atoi(s); err == nil {
		idx = n - 1
	} else if len(s) == 1 {
		idx = int(strings.ToUpper(s)[0] - 'A')
	} else {
		return 0, fmt.Errorf("unrecognised option %q", s)
	}

	if idx < 0 || idx >= options {
		return 0, fmt.Errorf("option %q out of range", s)
	}
	return idx, nil
}
