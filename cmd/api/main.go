// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"text2nft/internal/adapters/in/http/api"
	"text2nft/internal/platform/di"
)

func main() {
	ctx := context.Background()

	cont, err := di.NewContainer(ctx)
	if err != nil {
		log.WithError(err).Fatal("[boot] di init failed")
	}
	defer cont.Close()

	srv := &http.Server{
		Addr:        ":" + cont.Config.Port,
		Handler:     api.NewRouter(cont.RouterDeps()),
		ReadTimeout: 10 * time.Second,
		// deploy and mint wait for finalization
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.WithField("signal", sig).Info("[boot] shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("[boot] server shutdown error")
		}
		close(idleConnsClosed)
	}()

	log.WithField("port", cont.Config.Port).Info("[boot] listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("[boot] server error")
	}

	<-idleConnsClosed
	log.Info("[boot] server stopped")
}
