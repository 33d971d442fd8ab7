package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vladimirvolkov/bouncer/internal/config"
	"github.com/vladimirvolkov/bouncer/internal/middleware"
	"github.com/vladimirvolkov/bouncer/internal/room"
	"github.com/vladimirvolkov/bouncer/internal/ws"
)

// securityHeaders wraps a handler with common security response headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:; img-src 'self' data:")
		next.ServeHTTP(w, r)
	})
}

type RoomManager struct {
	ctx context.Context
	cfg config.Config
	hub *ws.Hub
}

func (rm *RoomManager) CreateRoom(c *ws.Conn) {
	r, err := room.NewRoom(c, c.ID, c.Name, rm.cfg)
	if err != nil {
		log.Printf("room %s: setup failed: %v", c.ID, err)
		c.Close()
		rm.hub.RoomEnded()
		return
	}
	r.Start(rm.ctx)
	go func() {
		select {
		case <-r.Done():
		case <-c.Done():
			r.Stop()
			<-r.Done()
		}
		rm.hub.RoomEnded()
	}()
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	printConfig := flag.Bool("print-config", false, "print the effective config and exit")
	flag.Parse()

	// Write logs to stdout so hosting platforms don't mark them as errors
	log.SetOutput(os.Stdout)

	cfg, err := config.Load(*configPath, config.Default())
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *printConfig {
		if err := cfg.Write(os.Stdout); err != nil {
			log.Fatalf("print config: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewIPRateLimiter(cfg.Server.MaxConnsPerIP, cfg.Server.MsgRate, time.Second)
	go limiter.RunCleanup(ctx)

	manager := &RoomManager{ctx: ctx, cfg: cfg}
	hub := ws.NewHub(manager, limiter, cfg.Server.AllowedOrigins, cfg.Server.MaxRooms)
	manager.hub = hub

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(hub.Stats())
	})

	// Static files with no-cache headers (prevents stale JS in browser)
	fs := http.FileServer(http.Dir(cfg.Server.StaticDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fs.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           securityHeaders(mux),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}

	go func() {
		<-ctx.Done()
		log.Println("shutting down...")
		server.Close()
	}()

	log.Printf("Bouncer server starting on :%s", cfg.Server.Port)
	log.Printf("serving static files from %s", cfg.Server.StaticDir)
	log.Printf("ball speed %.4f px/ms, a new ball every %dms", cfg.Game.InitialBallSpeed, cfg.Game.IntervalBetweenBalls)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}
