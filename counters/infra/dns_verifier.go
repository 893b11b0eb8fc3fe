package infra

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"counter-gateway/counters/domain"
)

// Formato esperado da verificação: um registro TXT em
// `_busuanzi.<domínio>` com o conteúdo `busuanzi-verify=<token>`.
const (
	verifyLabel  = "_busuanzi."
	verifyPrefix = "busuanzi-verify="
)

// TXTVerifier implementa domain.OwnershipVerifier consultando DNS.
type TXTVerifier struct {
	// Resolver permite injetar um resolver de teste. Nil usa o padrão.
	Resolver *net.Resolver
}

func (v TXTVerifier) Verify(ctx context.Context, d domain.Domain) error {
	r := v.Resolver
	if r == nil {
		r = net.DefaultResolver
	}

	records, err := r.LookupTXT(ctx, verifyLabel+d.Name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return domain.ErrVerificationFailed
		}
		return fmt.Errorf("txt lookup for %s%s: %w", verifyLabel, d.Name, err)
	}

	want := verifyPrefix + d.VerifyToken
	for _, rec := range records {
		if strings.TrimSpace(rec) == want {
			return nil
		}
	}
	return domain.ErrVerificationFailed
}
