// Package codec serializes bar series to files for the disk cache.
// The cache depends only on the interface; the format is picked by config
// (parquet in production, json/csv for debugging).
package codec

import (
	"strings"

	"marketdata/internal/model"
)

// Codec encodes and decodes one bar series per file.
type Codec interface {
	Encode(bars []model.Bar, path string) error
	Decode(path string) ([]model.Bar, error)
	Extension() string
}

// New creates an implementation by format (parquet, json, csv).
// Returns nil if the format is not supported.
func New(format string) Codec {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "parquet":
		return Parquet{}
	case "json":
		return JSON{}
	case "csv":
		return CSV{}
	default:
		return nil
	}
}
