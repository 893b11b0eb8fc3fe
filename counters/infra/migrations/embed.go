// Package migrations embute os arquivos SQL de migração do store SQLite.
package migrations

import "embed"

// FS contém as migrações embutidas em tempo de compilação.
//
//go:embed *.sql
var FS embed.FS
