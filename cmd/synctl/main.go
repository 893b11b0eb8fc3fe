// synctl é a ferramenta administrativa do counter-gateway: registra e
// verifica domínios direto no armazenamento e emite tokens de sessão.
package main

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"counter-gateway/counters/infra"
)

var (
	dataDir       string
	redisAddr     string
	redisPassword string
	redisDB       int
)

var rootCmd = &cobra.Command{
	Use:           "synctl",
	Short:         "Administer counter-gateway domains and sessions",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", envDefault("DATA_DIR", "./data"), "Directory holding the SQLite database")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", os.Getenv("REDIS_ADDR"), "Redis address (host:port)")
	rootCmd.PersistentFlags().StringVar(&redisPassword, "redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	rootCmd.PersistentFlags().IntVar(&redisDB, "redis-db", 0, "Redis database number")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func openDomainStore() (*infra.SQLiteDomainStore, error) {
	return infra.NewSQLiteDomainStore(dataDir)
}

func openRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
}
