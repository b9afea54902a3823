package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"retailiq/internal/agent"
	"retailiq/internal/session"
)

func newAskCmd(app *App) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   `ask "<question>"`,
		Short: "Ask the analyst a question from the terminal",
		Long:  "Run one question through the analysis pipeline, or start an interactive loop that keeps conversation memory between questions.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive && len(args) == 0 {
				return fmt.Errorf("provide a question or use --interactive")
			}

			ctx := cmd.Context()
			if _, err := verifyBackend(ctx, app); err != nil {
				return err
			}

			sess := session.NewStore().Create()
			if len(args) == 1 {
				ans, err := app.Agent.Ask(ctx, sess, args[0])
				if err != nil {
					return err
				}
				printAnswer(ans)
			}
			if !interactive {
				return nil
			}

			fmt.Println("Ask about the retail data. Ctrl-D to exit.")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "" {
					continue
				}
				ans, err := app.Agent.Ask(ctx, sess, question)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				printAnswer(ans)
			}
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "keep asking with shared conversation memory")
	return cmd
}

func printAnswer(ans *agent.Answer) {
	if ans.Title != "" {
		fmt.Println(ans.Title)
		fmt.Println(strings.Repeat("-", len(ans.Title)))
	}
	fmt.Println(ans.Insight)
	if ans.Note != "" {
		fmt.Printf("\nNote: %s\n", ans.Note)
	}
	if ans.TableText != "" {
		fmt.Printf("\n%s\n", ans.TableText)
	}
	for _, c := range ans.Callouts {
		fmt.Printf("  * %s\n", c)
	}
	if len(ans.Suggestions) > 0 {
		fmt.Println("\nYou could also ask:")
		for _, sug := range ans.Suggestions {
			fmt.Printf("  - %s\n", sug)
		}
	}
	fmt.Println()
}
