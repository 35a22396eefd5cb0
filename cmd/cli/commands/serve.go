package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-scheduler/pkg/api"
	"github.com/jakechorley/shift-scheduler/pkg/core/services"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP scheduling API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Cfg.Server.Addr
			}

			if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
				if err := app.Database.RunMigrations(app.Ctx); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
			}

			defaults, err := services.OptionsFromConfig(app.Cfg)
			if err != nil {
				return err
			}
			deps, err := app.ScheduleDeps("")
			if err != nil {
				return err
			}

			if os.Getenv("GIN_MODE") == "" {
				gin.SetMode(gin.ReleaseMode)
			}

			router := api.NewRouter(&api.Handler{
				Deps:     deps,
				Reader:   app.Database,
				Logger:   app.Logger,
				Defaults: defaults,
			})
			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("Server starting", zap.String("addr", addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			app.Logger.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (defaults to server.addr in config)")
	cmd.Flags().Bool("migrate", false, "Apply pending database migrations before serving")

	return cmd
}
