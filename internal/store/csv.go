package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"marketsim/internal/domain"
)

// ReadTicksCSV loads ticks from a CSV file with a header row of
// "timestamp,symbol,price". Timestamps must be RFC 3339. Rows are returned
// in file order; the simulation engine sorts them itself.
func ReadTicksCSV(path string) ([]domain.Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tick file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	if header[0] != "timestamp" || header[1] != "symbol" || header[2] != "price" {
		return nil, fmt.Errorf("%s: unexpected header %v, want [timestamp symbol price]", path, header)
	}

	var ticks []domain.Tick
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}

		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: parsing timestamp %q: %w", path, line, rec[0], err)
		}
		price, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: parsing price %q: %w", path, line, rec[2], err)
		}

		ticks = append(ticks, domain.Tick{Timestamp: ts, Symbol: rec[1], Price: price})
	}
	return ticks, nil
}
