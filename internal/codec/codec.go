// Package codec serializes topology graphs for the export boundary.
package codec

import (
	"io"

	"lanmap/internal/domain"
)

// Exporter encodes a topology graph to one output format
type Exporter interface {
	Export(g *domain.Graph, w io.Writer) error
	Format() string
}

// ForFormat returns the exporter for a format name, nil when unsupported.
func ForFormat(format string) Exporter {
	switch format {
	case "json", "":
		return NewJSONCodec()
	case "yaml", "yml":
		return NewYAMLCodec()
	default:
		return nil
	}
}
