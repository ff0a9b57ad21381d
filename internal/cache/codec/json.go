package codec

import (
	"os"

	json "github.com/goccy/go-json"

	"marketdata/internal/model"
)

// JSON stores bars as an indented JSON array.
type JSON struct{}

func (JSON) Extension() string { return "json" }

func (JSON) Encode(bars []model.Bar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(toRecords(bars))
}

func (JSON) Decode(path string) ([]model.Bar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []barRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	return fromRecords(recs), nil
}
