// Package migrations contiene el esquema SQL versionado (goose) embebido en el binario.
package migrations

import "embed"

// FS migraciones goose (archivos NNNNN_nombre.sql).
//
//go:embed *.sql
var FS embed.FS
