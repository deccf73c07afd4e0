package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VariableSan/ranobe-scraper/internal/cache"
	"github.com/VariableSan/ranobe-scraper/internal/progress"
	"github.com/VariableSan/ranobe-scraper/internal/ranobe"
	"github.com/VariableSan/ranobe-scraper/internal/scrape"
	"github.com/VariableSan/ranobe-scraper/internal/session"
	"github.com/VariableSan/ranobe-scraper/pkg/database"
	"github.com/VariableSan/ranobe-scraper/pkg/utils"
)

func main() {
	cfg := utils.LoadConfig()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := progress.NewHub()
	router.GET("/ws", progress.WSHandler(hub))

	sessions := session.NewManager(cfg.Headless)
	store := cache.NewStore(db)
	opener := ranobe.ManagerOpener{M: sessions}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"sessions":   sessions.Active(),
			"ws_clients": hub.Count(),
		})
	})

	api := router.Group("/api")

	ranobeLib := scrape.NewRanobeLib(cfg.RanobeLibLogin, cfg.RanobeLibPass, store)
	ranobe.NewRanobeLibHandler(ranobeLib, store, opener, hub, cfg.OutputDir).
		RegisterRoutes(api.Group("/ranobelibme"))

	ranobe.NewHandler(scrape.NewInfinite(), store, opener, hub, cfg.OutputDir).
		RegisterRoutes(api.Group("/infinitenoveltranslations"))

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	log.Println("server stopped")
}
