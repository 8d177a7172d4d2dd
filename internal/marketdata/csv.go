package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/signal-trader/internal/models"
)

const csvProviderName = "csv"

// CSVSource implements BarSource over local CSV files, one file per symbol.
// File layout: date,open,high,low,close,volume with a header row.
type CSVSource struct {
	directory string
}

// NewCSVSource creates a CSV-backed bar source
func NewCSVSource(directory string) *CSVSource {
	return &CSVSource{directory: directory}
}

// Name returns the provider name
func (s *CSVSource) Name() string {
	return csvProviderName
}

// IsEnabled returns whether the provider is enabled
func (s *CSVSource) IsEnabled() bool {
	return s.directory != ""
}

// FetchBars loads bars for a symbol from its CSV file, filtered to the range
func (s *CSVSource) FetchBars(ctx context.Context, symbol string, startDate, endDate time.Time) ([]models.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.directory, symbol+".csv")
	bars, err := LoadBarsCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewProviderError(csvProviderName, ErrCodeNotFound, fmt.Sprintf("no data file for symbol %s", symbol), err)
		}
		return nil, err
	}

	filtered := make([]models.Bar, 0, len(bars))
	for _, bar := range bars {
		if bar.Timestamp.Before(startDate) || bar.Timestamp.After(endDate) {
			continue
		}
		filtered = append(filtered, bar)
	}

	if len(filtered) == 0 {
		return nil, NewProviderError(csvProviderName, ErrCodeNotFound,
			fmt.Sprintf("no bars for %s in [%s, %s]", symbol, startDate.Format("2006-01-02"), endDate.Format("2006-01-02")), nil)
	}
	return filtered, nil
}

// LoadBarsCSV reads a bar series from a CSV file
func LoadBarsCSV(path string) ([]models.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, NewProviderError(csvProviderName, ErrCodeInvalidData, "failed to read csv", err)
	}
	if len(records) < 2 {
		return nil, NewProviderError(csvProviderName, ErrCodeInvalidData, "csv has no data rows", nil)
	}

	bars := make([]models.Bar, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 6 {
			return nil, NewProviderError(csvProviderName, ErrCodeInvalidData, fmt.Sprintf("row %d has %d columns, want 6", i+2, len(record)), nil)
		}

		timestamp, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			return nil, NewProviderError(csvProviderName, ErrCodeInvalidData, fmt.Sprintf("row %d has invalid date %q", i+2, record[0]), err)
		}

		values := make([]float64, 5)
		for j, field := range record[1:6] {
			d, err := decimal.NewFromString(field)
			if err != nil {
				return nil, NewProviderError(csvProviderName, ErrCodeInvalidData, fmt.Sprintf("row %d column %d has invalid number %q", i+2, j+2, field), err)
			}
			values[j], _ = d.Float64()
		}

		bars = append(bars, models.Bar{
			Timestamp: timestamp,
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}

	if err := models.ValidateBars(bars); err != nil {
		return nil, NewProviderError(csvProviderName, ErrCodeInvalidData, "csv contains unusable series", err)
	}
	return bars, nil
}

// SaveBarsCSV writes a bar series to a CSV file
func SaveBarsCSV(path string, bars []models.Bar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	if err := writer.Write([]string{"date", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, bar := range bars {
		record := []string{
			bar.Timestamp.Format("2006-01-02"),
			decimal.NewFromFloat(bar.Open).Round(4).String(),
			decimal.NewFromFloat(bar.High).Round(4).String(),
			decimal.NewFromFloat(bar.Low).Round(4).String(),
			decimal.NewFromFloat(bar.Close).Round(4).String(),
			decimal.NewFromFloat(bar.Volume).Round(0).String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}
