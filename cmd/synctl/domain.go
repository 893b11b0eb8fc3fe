package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"counter-gateway/counters/application"
	"counter-gateway/counters/domain"
)

var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Manage registered domains",
}

var domainAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register a domain for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runDomainAdd,
}

var domainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's domains",
	Args:  cobra.NoArgs,
	RunE:  runDomainList,
}

var domainVerifyCmd = &cobra.Command{
	Use:   "verify [name]",
	Short: "Mark a domain as verified without a DNS check",
	Long:  `Administrative override: marks the domain verified directly, skipping the TXT record lookup the API performs.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDomainVerify,
}

var ownerID string

func init() {
	domainAddCmd.Flags().StringVar(&ownerID, "owner", "", "Owner user id (required)")
	_ = domainAddCmd.MarkFlagRequired("owner")
	domainListCmd.Flags().StringVar(&ownerID, "owner", "", "Owner user id (required)")
	_ = domainListCmd.MarkFlagRequired("owner")

	domainCmd.AddCommand(domainAddCmd)
	domainCmd.AddCommand(domainListCmd)
	domainCmd.AddCommand(domainVerifyCmd)
	rootCmd.AddCommand(domainCmd)
}

func runDomainAdd(cmd *cobra.Command, args []string) error {
	name, err := application.NormalizeDomainName(args[0])
	if err != nil {
		return err
	}

	store, err := openDomainStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	d := domain.Domain{
		Name:        name,
		OwnerID:     ownerID,
		VerifyToken: uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.Create(context.Background(), d); err != nil {
		return err
	}

	fmt.Printf("registered %s (owner %s)\n", d.Name, d.OwnerID)
	fmt.Printf("verification record: _busuanzi.%s TXT busuanzi-verify=%s\n", d.Name, d.VerifyToken)
	return nil
}

func runDomainList(cmd *cobra.Command, args []string) error {
	store, err := openDomainStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ds, err := store.ListByOwner(context.Background(), ownerID)
	if err != nil {
		return err
	}
	if len(ds) == 0 {
		fmt.Println("no domains registered")
		return nil
	}
	for _, d := range ds {
		status := "pending"
		if d.Verified {
			status = "verified"
		}
		fmt.Printf("%s\t%s\tregistered %s\n", d.Name, status, d.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func runDomainVerify(cmd *cobra.Command, args []string) error {
	name, err := application.NormalizeDomainName(args[0])
	if err != nil {
		return err
	}

	store, err := openDomainStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.MarkVerified(context.Background(), name, time.Now().UTC()); err != nil {
		return err
	}
	fmt.Printf("%s marked verified\n", name)
	return nil
}
