// Package migrations embeds the goose SQL migrations backing the
// repository layer's Postgres schema (depots, vehicles, shipments, jobs,
// routes, stops), mirroring the donor's own embedded migrations.FS
// package used from each service's cmd/main.go.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
