// cmd/cog-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pardotcog/internal/cogserver"
	"pardotcog/pkg/config"
	"pardotcog/pkg/db"
	"pardotcog/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	rdb := db.MustRedis(cfg, log)
	if rdb == nil {
		log.Warnw("running without response cache")
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: cogserver.New(cfg, log, rdb).Router(),
	}
	go func() {
		log.Infow("cog-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("cog-service stopped")
}
