package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"counter-gateway/counters"
	"counter-gateway/counters/application"
	"counter-gateway/counters/infra"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.redisAddr,
		Password: cfg.redisPassword,
		DB:       cfg.redisDB,
	})
	defer func() { _ = rdb.Close() }()

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	_, err = rdb.Ping(pingCtx).Result()
	cancel()
	if err != nil {
		log.Fatalf("redis ping error: %v", err)
	}

	domainStore, err := infra.NewSQLiteDomainStore(cfg.dataDir)
	if err != nil {
		log.Fatalf("sqlite error: %v", err)
	}
	defer func() { _ = domainStore.Close() }()

	counterStore := infra.NewRedisCounterStore(rdb, infra.WithCounterPrefix(cfg.counterPrefix))
	sessionStore := infra.NewRedisSessionStore(rdb)
	source := infra.NewBusuanziClient(cfg.busuanziBaseURL, counterStore,
		infra.WithRequestTimeout(cfg.busuanziTimeout),
		infra.WithRateLimit(cfg.busuanziRPS, cfg.busuanziBurst),
	)

	// Um sync por domínio a cada syncMinInterval, com uma folga de burst
	// para o primeiro pedido depois de um tempo parado.
	throttle := infra.NewSyncThrottle(1/cfg.syncMinInterval.Seconds(), cfg.syncBurst)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	throttle.StartJanitor(ctx)

	api := &counters.API{
		Sessions:   sessionStore,
		Sync:       application.SyncService{Domains: domainStore, Source: source, Counters: counterStore},
		Domains:    application.DomainService{Domains: domainStore, Verifier: infra.TXTVerifier{}},
		Visits:     application.VisitService{Domains: domainStore, Counters: counterStore},
		Throttle:   throttle,
		RetryAfter: cfg.syncMinInterval,
		TrustXFF:   cfg.trustXFF,
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("syncd listening on %s", cfg.listenAddr)
	log.Printf("busuanzi: baseURL=%q timeout=%s rps=%.3f burst=%d", cfg.busuanziBaseURL, cfg.busuanziTimeout, cfg.busuanziRPS, cfg.busuanziBurst)
	log.Printf("sync throttle: minInterval=%s burst=%d", cfg.syncMinInterval, cfg.syncBurst)
	log.Printf("storage: sqlite=%q redisAddr=%q counterPrefix=%q", domainStore.Path(), cfg.redisAddr, cfg.counterPrefix)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr    string
	dataDir       string
	counterPrefix string
	trustXFF      bool

	redisAddr     string
	redisPassword string
	redisDB       int

	busuanziBaseURL string
	busuanziTimeout time.Duration
	busuanziRPS     float64
	busuanziBurst   int

	syncMinInterval time.Duration
	syncBurst       int
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.dataDir = getenvDefault("DATA_DIR", "./data")
	cfg.counterPrefix = getenvDefault("COUNTER_PREFIX", "counter")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)

	cfg.redisAddr = os.Getenv("REDIS_ADDR")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	cfg.busuanziBaseURL = strings.TrimRight(os.Getenv("BUSUANZI_BASE_URL"), "/")
	cfg.busuanziTimeout = getenvDurationDefault("BUSUANZI_TIMEOUT", 10*time.Second)
	cfg.busuanziRPS = getenvFloatDefault("BUSUANZI_RPS", 2)
	cfg.busuanziBurst = getenvIntDefault("BUSUANZI_BURST", 4)

	// IMPORTANTE: o burst permite o primeiro pedido passar mesmo depois de
	// muito tempo sem sync. Com burst alto demais, o throttle parece não
	// funcionar, porque os primeiros pedidos todos passam.
	cfg.syncMinInterval = getenvDurationDefault("SYNC_MIN_INTERVAL", 5*time.Minute)
	cfg.syncBurst = getenvIntDefault("SYNC_BURST", 2)

	if cfg.redisAddr == "" {
		return config{}, errors.New("REDIS_ADDR is required")
	}
	if cfg.busuanziBaseURL == "" {
		return config{}, errors.New("BUSUANZI_BASE_URL is required")
	}
	if cfg.busuanziRPS <= 0 {
		return config{}, errors.New("BUSUANZI_RPS must be > 0")
	}
	if cfg.busuanziBurst <= 0 {
		return config{}, errors.New("BUSUANZI_BURST must be > 0")
	}
	if cfg.syncMinInterval <= 0 {
		return config{}, errors.New("SYNC_MIN_INTERVAL must be > 0")
	}
	if cfg.syncBurst <= 0 {
		return config{}, errors.New("SYNC_BURST must be > 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
