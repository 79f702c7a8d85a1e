// Package pricedata loads OHLCV price series from CSV files of the
// shape produced by common market-data exports: a header row followed
// by Date,Open,High,Low,Close,Adj Close,Volume records.
package pricedata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// defaultCloseColumn is used when the header carries no "Close" column.
const defaultCloseColumn = 4

// Series is the closing-price history for one symbol.
type Series struct {
	Symbol  string
	Prices  []float64
	Skipped int // rows dropped for missing or unparseable closes
}

// Load reads the closing prices for symbol from the CSV file at path.
func Load(path, symbol string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pricedata: opening %s: %w", path, err)
	}
	defer f.Close()

	series, err := parse(f, symbol)
	if err != nil {
		return nil, fmt.Errorf("pricedata: parsing %s: %w", path, err)
	}
	return series, nil
}

// LoadDir loads <symbol>.csv from dir for every symbol given.
func LoadDir(dir string, symbols []string) ([]*Series, error) {
	all := make([]*Series, 0, len(symbols))
	for _, symbol := range symbols {
		series, err := Load(filepath.Join(dir, symbol+".csv"), symbol)
		if err != nil {
			return nil, err
		}
		all = append(all, series)
	}
	return all, nil
}

func parse(r io.Reader, symbol string) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows, they are skipped below

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	closeCol := closeColumn(header)

	series := &Series{Symbol: symbol}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		if closeCol >= len(record) {
			series.Skipped++
			continue
		}

		raw := strings.TrimSpace(record[closeCol])
		if raw == "" || raw == "null" || raw == "N/A" {
			series.Skipped++
			continue
		}

		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			series.Skipped++
			continue
		}
		series.Prices = append(series.Prices, price)
	}

	return series, nil
}

// closeColumn finds the "Close" column in the header, falling back to
// the conventional position for headerless or unexpected layouts.
func closeColumn(header []string) int {
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "Close") {
			return i
		}
	}
	return defaultCloseColumn
}
