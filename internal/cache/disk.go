package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketdata/internal/cache/codec"
	"marketdata/internal/model"
)

// DiskCache persists one file per cached range under
// {base}/{SYMBOL}/{timeframe}_{start}_{end}.{ext}. The codec decides the
// file format. Reads never create directories; unreadable or unparsable
// files are plain misses so a corrupt file at worst costs a refetch.
type DiskCache struct {
	base  string
	codec codec.Codec
}

func NewDiskCache(base string, c codec.Codec) *DiskCache {
	return &DiskCache{base: base, codec: c}
}

func (c *DiskCache) filePath(symbol string, timeframe model.Timeframe, start, end time.Time) string {
	name := fmt.Sprintf("%s_%s_%s.%s",
		timeframe, start.Format(dateLayout), end.Format(dateLayout), c.codec.Extension())
	return filepath.Join(c.base, strings.ToUpper(symbol), name)
}

func (c *DiskCache) GetBars(_ context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, bool) {
	path := c.filePath(symbol, timeframe, start, end)
	bars, err := c.codec.Decode(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("cache read failed", "path", path, "error", err)
		}
		return nil, false
	}
	return bars, true
}

func (c *DiskCache) StoreBars(_ context.Context, symbol string, bars []model.Bar, timeframe model.Timeframe, start, end time.Time) error {
	if len(bars) == 0 {
		return nil
	}
	path := c.filePath(symbol, timeframe, start, end)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return c.codec.Encode(bars, path)
}

func (c *DiskCache) HasData(_ context.Context, symbol string, timeframe model.Timeframe, start, end time.Time) bool {
	_, err := os.Stat(c.filePath(symbol, timeframe, start, end))
	return err == nil
}

func (c *DiskCache) Clear(_ context.Context, symbol string) error {
	return os.RemoveAll(filepath.Join(c.base, strings.ToUpper(symbol)))
}

func (c *DiskCache) ClearAll(_ context.Context) error {
	entries, err := os.ReadDir(c.base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.base, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
