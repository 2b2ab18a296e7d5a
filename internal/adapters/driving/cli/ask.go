package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

// maxHistoryTurns bounds the conversation replayed to the model.
const maxHistoryTurns = 10

var (
	askDocument string
	askJSON     bool
)

// stdinIsTerminal reports whether stdin is interactive. Replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Answers a question using only passages retrieved from your documents.

Without a question and with a terminal on stdin, starts a chat session that
keeps the conversation history. Type "exit" or press Ctrl-D to leave.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askDocument, "doc", "d", "", "restrict the answer to one document")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}
	owner, err := currentOwner()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		answer, err := ragService.Answer(cmd.Context(), owner, driving.AnswerRequest{
			Query:      args[0],
			DocumentID: askDocument,
		})
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		if askJSON {
			return printJSON(cmd, answer)
		}
		printAnswer(cmd, answer)
		return nil
	}

	if !stdinIsTerminal() {
		return errors.New("a question is required when stdin is not a terminal")
	}
	return chatLoop(cmd, owner)
}

func chatLoop(cmd *cobra.Command, owner domain.OwnerID) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	var history []domain.ChatTurn

	cmd.Println("Ask about your documents. Type \"exit\" to quit.")
	for {
		cmd.Print("\n> ")
		line, readErr := reader.ReadString('\n')
		question := strings.TrimSpace(line)
		if question == "exit" || question == "quit" {
			return nil
		}
		if question != "" {
			answer, err := ragService.Answer(cmd.Context(), owner, driving.AnswerRequest{
				Query:      question,
				DocumentID: askDocument,
				History:    history,
			})
			if err != nil {
				cmd.Printf("Error: %v\n", err)
			} else {
				printAnswer(cmd, answer)
				history = append(history,
					domain.ChatTurn{Role: domain.ChatRoleUser, Content: question},
					domain.ChatTurn{Role: domain.ChatRoleAssistant, Content: answer.Text})
				if len(history) > maxHistoryTurns {
					history = history[len(history)-maxHistoryTurns:]
				}
			}
		}
		if readErr != nil {
			cmd.Println()
			return nil
		}
	}
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	if !answer.Grounded() {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i := range answer.UsedChunks {
		c := answer.UsedChunks[i]
		cmd.Printf("  [%d] %s #%d (distance %.3f)\n", i+1, c.DocumentID, c.Index, c.Distance)
	}
}
