package app

import (
	"context"
	"log"
	"net/http"

	arch "archrelay/internal/architecture"
	archcache "archrelay/internal/cache/architecture"
	"archrelay/internal/gateway/config"
	"archrelay/internal/gateway/handler"
	"archrelay/internal/gateway/server"
)

type App struct {
	server  *server.Server
	handler http.Handler
	cache   *archcache.CachedGenerator
}

func New(cfg *config.Config) *App {
	// Dependencies
	client := arch.NewClientWithHTTP(cfg.Upstream.URL, &http.Client{Timeout: cfg.Upstream.Timeout})
	var gen arch.Generator = client
	var cache *archcache.CachedGenerator
	if cfg.Cache.Enabled() {
		cache = archcache.NewCachedGenerator(client, archcache.CacheConfig{
			MaxEntries: cfg.Cache.Size,
			TTL:        cfg.Cache.TTL,
		})
		gen = cache
		log.Printf("architecture cache: size=%d ttl=%s", cfg.Cache.Size, cfg.Cache.TTL)
	}
	log.Printf("architecture service: url=%s timeout=%s", client.URL(), cfg.Upstream.Timeout)
	if len(cfg.CORS.AllowedOrigins) == 0 && !cfg.IsLocal() {
		log.Printf("cors: WARNING all origins allowed with credentials in env=%s; set CORS_ALLOWED_ORIGINS to restrict", cfg.Env)
	}

	architectureHandler := handler.NewArchitectureHandler(gen)

	// Routing & Server
	mux := server.NewMux(architectureHandler, cfg.CORS.AllowedOrigins)
	srv := server.New(cfg.Port, mux)

	return &App{
		server:  srv,
		handler: mux,
		cache:   cache,
	}
}

// Handler exposes the routed handler, mainly for in-process tests.
func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.cache != nil {
		m := a.cache.Metrics()
		log.Printf("architecture cache: hits=%d misses=%d origin_errors=%d", m.Hits, m.Misses, m.OriginErrors)
	}
	return a.server.Shutdown(ctx)
}
