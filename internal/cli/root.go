// Package cli defines the retailiq command tree.
package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"retailiq/internal/agent"
	"retailiq/internal/config"
	"retailiq/internal/llmclient"
)

const verifyTimeout = 10 * time.Second

// App holds the wired dependencies shared by all subcommands.
type App struct {
	Cfg   *config.Config
	Agent *agent.Agent
	LLM   llmclient.Client
	Log   *log.Logger
}

// NewRootCmd creates the top-level "retailiq" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "retailiq",
		Short:         "Business intelligence assistant over retail transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newAskCmd(app),
	)

	return root
}

// verifyBackend checks the chat backend and warms the model so the first
// question does not pay the load cost.
func verifyBackend(ctx context.Context, app *App) (string, error) {
	vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	model, err := app.LLM.Verify(vctx)
	if err != nil {
		return "", fmt.Errorf("verifying %s backend: %w", app.LLM.Name(), err)
	}
	llmclient.Warmup(ctx, app.LLM)
	return model, nil
}
