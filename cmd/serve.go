package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/config"
	"github.com/AlexHayrapetyan/RestoBook/queue"
	"github.com/AlexHayrapetyan/RestoBook/router"
	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the status sweeper and the booking event consumer",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(services.SystemClock())
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if a.cfg.ConfigFile != "" {
		if err := seedFromFile(cmd.Context(), a, a.cfg.ConfigFile); err != nil {
			return err
		}
	}

	r := router.SetupRouter(a.svcs, a.cfg, a.rdb, a.registry)
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return err
	}
	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		utils.InfoLogger.Infof("Listening on port %s", a.cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.svcs.Sweeper.Run(ctx)
	})
	if a.cfg.RabbitMQURL != "" {
		g.Go(func() error {
			return queue.StartBookingConsumer(ctx, a.cfg.RabbitMQURL)
		})
	}
	g.Go(func() error {
		purgeBlacklist(ctx, a.cfg.SessionTTL)
		return nil
	})

	err = g.Wait()
	utils.InfoLogger.Info("Server stopped")
	return err
}

// purgeBlacklist drops logged-out tokens once they would have expired anyway.
func purgeBlacklist(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = config.DefaultSessionTTL
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := utils.PurgeBlacklist(now); n > 0 {
				utils.InfoLogger.Infof("Purged %d expired token(s) from the blacklist", n)
			}
		}
	}
}
