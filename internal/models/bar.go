package models

import (
	"fmt"
	"time"
)

// Bar represents a single OHLCV observation for a fixed interval.
// Bars are immutable once produced.
type Bar struct {
	Timestamp time.Time `db:"timestamp" json:"timestamp" validate:"required"`
	Open      float64   `db:"open" json:"open" validate:"gt=0"`
	High      float64   `db:"high" json:"high" validate:"gt=0"`
	Low       float64   `db:"low" json:"low" validate:"gt=0"`
	Close     float64   `db:"close" json:"close" validate:"gt=0"`
	Volume    float64   `db:"volume" json:"volume" validate:"gte=0"`
}

// ValidateBars checks that a bar series is usable as simulation input:
// non-empty, strictly increasing timestamps, no duplicates, sane OHLC ranges.
func ValidateBars(bars []Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("%w: empty bar series", ErrInsufficientHistory)
	}
	for i, bar := range bars {
		if bar.High < bar.Low {
			return fmt.Errorf("bar %d (%s): high %.4f below low %.4f", i, bar.Timestamp.Format("2006-01-02"), bar.High, bar.Low)
		}
		if bar.Close > bar.High || bar.Close < bar.Low {
			return fmt.Errorf("bar %d (%s): close %.4f outside [low, high]", i, bar.Timestamp.Format("2006-01-02"), bar.Close)
		}
		if i == 0 {
			continue
		}
		if !bars[i-1].Timestamp.Before(bar.Timestamp) {
			return fmt.Errorf("%w: bar %d timestamp %s does not advance past %s",
				ErrUnorderedBars, i, bar.Timestamp.Format(time.RFC3339), bars[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
