package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"retailiq/internal/server"
)

const shutdownGrace = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			model, err := verifyBackend(ctx, app)
			if err != nil {
				// The health endpoint reports the backend state; a server
				// with a cold backend is still worth starting.
				app.Log.Printf("warning: %v", err)
			} else {
				app.Log.Printf("llm backend ready: %s (%s)", app.LLM.Name(), model)
			}

			srv := server.New(addr, app.Agent, app.LLM, app.Cfg.SessionTTL, app.Log)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			app.Log.Printf("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.Cfg.Port, "listen address")
	return cmd
}
