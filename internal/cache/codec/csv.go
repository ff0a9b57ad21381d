package codec

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"marketdata/internal/model"
)

// CSV stores bars as CSV (header: t,o,h,l,c,v,vw,n). Optional columns are
// left empty when null.
type CSV struct{}

var csvHeader = []string{"t", "o", "h", "l", "c", "v", "vw", "n"}

func (CSV) Extension() string { return "csv" }

func (CSV) Encode(bars []model.Bar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		vw, n := "", ""
		if b.VWAP != nil {
			vw = floatStr(*b.VWAP)
		}
		if b.NumTrades != nil {
			n = strconv.FormatInt(*b.NumTrades, 10)
		}
		row := []string{
			strconv.FormatInt(b.Timestamp.UnixMilli(), 10),
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			floatStr(b.Volume),
			vw,
			n,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (CSV) Decode(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv %s: missing header", path)
	}

	recs := make([]barRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("csv %s: want %d columns, got %d", path, len(csvHeader), len(row))
		}
		var r barRecord
		if r.Timestamp, err = strconv.ParseInt(row[0], 10, 64); err != nil {
			return nil, err
		}
		if r.Open, err = strconv.ParseFloat(row[1], 64); err != nil {
			return nil, err
		}
		if r.High, err = strconv.ParseFloat(row[2], 64); err != nil {
			return nil, err
		}
		if r.Low, err = strconv.ParseFloat(row[3], 64); err != nil {
			return nil, err
		}
		if r.Close, err = strconv.ParseFloat(row[4], 64); err != nil {
			return nil, err
		}
		if r.Volume, err = strconv.ParseFloat(row[5], 64); err != nil {
			return nil, err
		}
		if row[6] != "" {
			vw, err := strconv.ParseFloat(row[6], 64)
			if err != nil {
				return nil, err
			}
			r.VWAP = &vw
		}
		if row[7] != "" {
			n, err := strconv.ParseInt(row[7], 10, 64)
			if err != nil {
				return nil, err
			}
			r.NumTrades = &n
		}
		recs = append(recs, r)
	}
	return fromRecords(recs), nil
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
