package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"counter-gateway/counters/infra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage API sessions",
}

var sessionIssueCmd = &cobra.Command{
	Use:   "issue [user-id]",
	Short: "Issue a session token for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionIssue,
}

var sessionTTL time.Duration

func init() {
	sessionIssueCmd.Flags().DurationVar(&sessionTTL, "ttl", 30*24*time.Hour, "Session lifetime (0 = never expires)")

	sessionCmd.AddCommand(sessionIssueCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionIssue(cmd *cobra.Command, args []string) error {
	if redisAddr == "" {
		return errors.New("--redis-addr (or REDIS_ADDR) is required")
	}

	rdb := openRedis()
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := infra.NewRedisSessionStore(rdb)
	token, err := store.Issue(ctx, args[0], sessionTTL)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
