package models

import "time"

// Direction represents the lean of a single indicator reading.
type Direction string

const (
	DirectionBuy     Direction = "BUY"
	DirectionSell    Direction = "SELL"
	DirectionNeutral Direction = "NEUTRAL"
)

// ConfidenceTag flags a confirming pattern observed by an indicator.
type ConfidenceTag string

const (
	TagDivergence      ConfidenceTag = "DIVERGENCE"
	TagSqueeze         ConfidenceTag = "SQUEEZE"
	TagVolumeConfirmed ConfidenceTag = "VOLUME_CONFIRMED"
)

// IndicatorReading is the per-bar contract every indicator calculator must
// satisfy. The integrator is agnostic to which concrete indicator produced a
// reading; new indicators are added by emitting conforming readings.
type IndicatorReading struct {
	IndicatorID  string          `json:"indicator_id"`
	BarTimestamp time.Time       `json:"bar_timestamp"`
	Direction    Direction       `json:"direction"`
	Strength     float64         `json:"strength"` // in [0,1]
	Tags         []ConfidenceTag `json:"tags,omitempty"`
}

// HasTag reports whether the reading carries the given confidence tag.
func (r IndicatorReading) HasTag(tag ConfidenceTag) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
