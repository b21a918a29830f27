// Package codec serializes the host inventory for import and export.
// Importers produce parsed records for the ingest pipeline; exporters
// render the canonical host set.
package codec

import (
	"io"

	"netograph/internal/domain"
)

// Importer parses an inventory document into parsed host records
type Importer interface {
	Parse(r io.Reader) ([]domain.ParsedHost, error)
	Format() string
}

// Exporter renders the canonical host set
type Exporter interface {
	Export(hosts []domain.Host, w io.Writer) error
	Format() string
}
