package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecar.org/esign/internal/listener"
	"ecar.org/esign/internal/obs"
	"ecar.org/esign/internal/store/pg"
)

var version = "0.3.1"

func main() {
	obs.Init()

	// Persistence is optional: without a DSN the listener still validates
	// and acknowledges notifications, it just keeps no history.
	var (
		store *pg.Store
		opts  []listener.Option
	)
	if dsn := os.Getenv("ESIGN_PG_DSN"); dsn != "" {
		var err error
		store, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		opts = append(opts, listener.WithEventStore(store))
	}
	if secret := os.Getenv("ESIGN_HMAC_SECRET"); secret != "" {
		opts = append(opts, listener.WithHMACSecret([]byte(secret)))
	}

	probe := listener.ReadyProbe{}
	if store != nil {
		probe.DB = store.DB()
	}
	api := listener.New(probe, version, opts...)

	addr := os.Getenv("ESIGN_LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	handler := listener.Logging(listener.RateLimit(listener.MaxBodyBytes(api.Handler(), 1<<20), 20, 10))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting esign-listener %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if store != nil {
		_ = store.Close()
	}
	log.Println("Stopped")
}
