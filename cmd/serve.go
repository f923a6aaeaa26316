package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mentorai/tutor/config"
	"mentorai/tutor/handlers"
	"mentorai/tutor/llm"
	"mentorai/tutor/routes"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the chat API and the /ai-chat completion endpoint.

By default the chat client calls this server's own /ai-chat, which answers
with the provider named by AI_PROVIDER.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if serveAddr != "" {
			settings.Addr = serveAddr
		}

		a, err := newApp(ctx, settings)
		if err != nil {
			return err
		}
		defer a.close()

		provider, err := llm.NewProvider(llm.Model(settings.Provider), settings.ProviderKey, settings.ProviderModel,
			llm.WithProviderHTTPClient(&http.Client{Timeout: settings.CompletionTimeout}))
		if err != nil {
			config.Logger.Warn("AI provider disabled: ", err)
		}

		srv := &http.Server{
			Addr:              settings.Addr,
			Handler:           routes.NewRouter(handlers.New(a.ctrl, a.notices, provider), settings.JWTSecret),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      settings.CompletionTimeout + 30*time.Second,
			IdleTimeout:       120 * time.Second,
		}
		return runServer(ctx, srv)
	},
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		config.Logger.Info("Server is running on ", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		config.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
