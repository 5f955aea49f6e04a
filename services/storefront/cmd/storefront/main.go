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
	"github.com/gorilla/csrf"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/pkg/config"
	"github.com/hey-granth/StandardStitch/pkg/events"
	"github.com/hey-granth/StandardStitch/pkg/mq"
	"github.com/hey-granth/StandardStitch/pkg/obs"
	"github.com/hey-granth/StandardStitch/pkg/tokenstore"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/clients"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/handlers"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/middlewares"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/session"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

// connectSink dials RabbitMQ a few times before settling for console events.
func connectSink(cfg config.App) (events.Sink, func()) {
	if cfg.RabbitURL == "" {
		return events.NewConsole(), func() {}
	}
	for attempt := 1; attempt <= 3; attempt++ {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.ActivityExchange, "storefront")
		if err == nil {
			return pub, func() { _ = pub.Close() }
		}
		log.Printf("[storefront] rabbitmq connect failed: %v; retry in 2s", err)
		time.Sleep(2 * time.Second)
	}
	log.Printf("[storefront] activity events fall back to console")
	return events.NewConsole(), func() {}
}

func main() {
	cfg := must(config.Load())

	shutdownTracer := must(obs.InitTracer("storefront", cfg.OTLPEndpoint, cfg.Env))
	defer func() { _ = shutdownTracer(context.Background()) }()

	var store tokenstore.Store = tokenstore.NewMemory()
	if cfg.RedisAddr != "" {
		rs := must(tokenstore.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TokenTTL))
		defer rs.Close()
		store = rs
	}

	sink, closeSink := connectSink(cfg)
	defer closeSink()

	api := apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithRetry(cfg.APIRetryMax, cfg.APIRetryInitial),
	)
	reg := session.NewRegistry(func(sid string) *session.Session {
		b := tokenstore.Bind(store, sid)
		return session.New(sid, b, clients.New(api.WithTokens(b)))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reg.Janitor(ctx, time.Minute, cfg.SessionIdleTTL)

	r := gin.Default()
	handlers.Mount(r, reg, sink, middlewares.CookieConfig{
		Name:   cfg.SessionCookie,
		Secure: cfg.CookieSecure,
		MaxAge: int(cfg.TokenTTL.Seconds()),
	})

	var h http.Handler = r
	if cfg.CSRFKey != "" {
		h = csrf.Protect([]byte(cfg.CSRFKey),
			csrf.Secure(cfg.CookieSecure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
		)(r)
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Printf("[storefront] http on %s (api=%s)", cfg.HTTPAddr, cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()

	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Printf("[storefront] shutdown: %v", err)
	}
}
