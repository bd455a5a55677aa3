package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/papertrader/market"
)

// CSVSource reads time,close rows from a file on every call, so a file that
// another process appends to behaves like a live feed. Times may be RFC3339
// or unix seconds or milliseconds. A header row is skipped.
type CSVSource struct {
	Path string
}

var _ Source = CSVSource{}

func (c CSVSource) Bars(ctx context.Context) (market.Series, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// LoadCSV reads a whole bar file.
func LoadCSV(path string) (market.Series, error) {
	return CSVSource{Path: path}.Bars(context.Background())
}

func ReadCSV(r io.Reader) (market.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var bars market.Series
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("csv line %d: want time,close got %d fields", line, len(rec))
		}
		if line == 1 && isHeader(rec) {
			continue
		}

		ts, err := ParseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		px, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: close: %w", line, err)
		}
		bars = append(bars, market.Bar{Time: ts, Close: px})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	if err := bars.Validate(); err != nil {
		return nil, err
	}
	return bars, nil
}

// ParseTime accepts RFC3339 or a unix timestamp. Values above 1e12 are
// taken as milliseconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: want RFC3339 or unix", s)
	}
	return t.UTC(), nil
}

func isHeader(rec []string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	return err != nil
}

// WriteCSV writes bars in the format ReadCSV accepts.
func WriteCSV(w io.Writer, bars market.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "close"}); err != nil {
		return err
	}
	for _, b := range bars {
		if err := cw.Write([]string{
			b.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
