package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/heartform/internal/config"
	"github.com/Skufu/heartform/internal/predict"
	"github.com/Skufu/heartform/internal/session"
	"github.com/Skufu/heartform/internal/web"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	if !cfg.APIURLFromEnv {
		log.Printf("PREDICT_API_URL not set, using %s", cfg.APIURL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router, store, err := setupRouter(cfg, log.Default())
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}
	go store.Run(ctx, sweepInterval)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.PredictTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	log.Printf("server listening on :%s (inference at %s)", cfg.Port, cfg.APIURL)
	waitForShutdown(server)
	cancel()
	store.Close()
}

// setupRouter builds the shared wake state, the session store and the HTTP
// routes on top of them.
func setupRouter(cfg *config.Config, logger *log.Logger) (*gin.Engine, *session.Store, error) {
	client := predict.NewClient(cfg.APIURL, cfg.PredictTimeout)
	waker := predict.NewWaker(client, cfg.WakeTimeout, logger)

	store := session.NewStore(cfg.SessionTTL, func(id string) *session.Session {
		return session.New(id, waker, cfg.PredictTimeout, logger)
	})

	srv, err := web.NewServer(store, waker, web.Options{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		LimiterIdle:    cfg.SessionTTL,
		SecureCookie:   cfg.SecureCookie,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("web server: %w", err)
	}
	return srv.Router(), store, nil
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
