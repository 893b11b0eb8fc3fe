package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // driver SQLite

	"counter-gateway/counters/domain"
	"counter-gateway/counters/infra/migrations"
)

// SQLiteDomainStore guarda os registros de domínio em SQLite (modo WAL).
type SQLiteDomainStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteDomainStore abre (ou cria) o banco em dataDir e aplica as
// migrações pendentes.
func NewSQLiteDomainStore(dataDir string) (*SQLiteDomainStore, error) {
	if dataDir == "" {
		return nil, errors.New("data dir is required")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "domains.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteDomainStore{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteDomainStore) Close() error { return s.db.Close() }

// Path devolve o caminho do arquivo do banco.
func (s *SQLiteDomainStore) Path() string { return s.path }

func (s *SQLiteDomainStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

// Create implementa domain.DomainStore. Nome repetido vira ErrDomainTaken.
func (s *SQLiteDomainStore) Create(ctx context.Context, d domain.Domain) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO domains (name, owner_id, verified, verify_token, created_at)
		VALUES (?, ?, 0, ?, ?)
	`, d.Name, d.OwnerID, d.VerifyToken, d.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrDomainTaken
		}
		return fmt.Errorf("inserting domain: %w", err)
	}
	return nil
}

// FindByName implementa domain.DomainStore.
func (s *SQLiteDomainStore) FindByName(ctx context.Context, name string) (domain.Domain, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, owner_id, verified, verify_token, created_at, verified_at
		FROM domains WHERE name = ?
	`, name)
	return scanDomain(row)
}

// FindByNameAndOwner implementa domain.DomainStore.
//
// A consulta carrega os dois predicados de uma vez: "não existe" e "existe
// mas o dono é outro" produzem exatamente o mesmo ErrDomainNotFound.
func (s *SQLiteDomainStore) FindByNameAndOwner(ctx context.Context, name, ownerID string) (domain.Domain, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, owner_id, verified, verify_token, created_at, verified_at
		FROM domains WHERE name = ? AND owner_id = ?
	`, name, ownerID)
	return scanDomain(row)
}

// ListByOwner implementa domain.DomainStore.
func (s *SQLiteDomainStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Domain, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, owner_id, verified, verify_token, created_at, verified_at
		FROM domains WHERE owner_id = ? ORDER BY created_at, name
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing domains: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkVerified implementa domain.DomainStore.
func (s *SQLiteDomainStore) MarkVerified(ctx context.Context, name string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE domains SET verified = 1, verified_at = ? WHERE name = ?
	`, at.UTC().Format(time.RFC3339), name)
	if err != nil {
		return fmt.Errorf("updating domain: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrDomainNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDomain(row rowScanner) (domain.Domain, error) {
	var (
		d          domain.Domain
		verified   int
		createdAt  string
		verifiedAt sql.NullString
	)
	err := row.Scan(&d.Name, &d.OwnerID, &verified, &d.VerifyToken, &createdAt, &verifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Domain{}, domain.ErrDomainNotFound
	}
	if err != nil {
		return domain.Domain{}, fmt.Errorf("scanning domain: %w", err)
	}

	d.Verified = verified != 0
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		d.CreatedAt = t
	}
	if verifiedAt.Valid {
		if t, err := time.Parse(time.RFC3339, verifiedAt.String); err == nil {
			d.VerifiedAt = t
		}
	}
	return d, nil
}
