package codec

import (
	"github.com/parquet-go/parquet-go"

	"marketdata/internal/model"
)

// Parquet stores bars as a parquet file, one row group.
type Parquet struct{}

func (Parquet) Extension() string { return "parquet" }

func (Parquet) Encode(bars []model.Bar, path string) error {
	return parquet.WriteFile(path, toRecords(bars))
}

func (Parquet) Decode(path string) ([]model.Bar, error) {
	recs, err := parquet.ReadFile[barRecord](path)
	if err != nil {
		return nil, err
	}
	return fromRecords(recs), nil
}
