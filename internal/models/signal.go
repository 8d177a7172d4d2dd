package models

import "time"

// Action represents the integrated trade decision for a bar.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Quality buckets an integrated signal's confidence for filtering and
// reporting. It is not used for risk sizing directly.
type Quality string

const (
	QualityExcellent Quality = "EXCELLENT"
	QualityVeryGood  Quality = "VERY_GOOD"
	QualityGood      Quality = "GOOD"
	QualityFair      Quality = "FAIR"
	QualityWeak      Quality = "WEAK"
)

// IntegratedSignal is the deterministic combination of all indicator readings
// for one bar. Exactly one is produced per bar; it is immutable.
type IntegratedSignal struct {
	BarTimestamp       time.Time `json:"bar_timestamp"`
	Action             Action    `json:"action"`
	Confidence         float64   `json:"confidence"` // in [0,1]
	AgreeingIndicators int       `json:"agreeing_indicators"`
	Quality            Quality   `json:"quality"`
}

// QualityForConfidence maps a confidence value to its quality bucket.
func QualityForConfidence(confidence float64) Quality {
	switch {
	case confidence >= 0.9:
		return QualityExcellent
	case confidence >= 0.8:
		return QualityVeryGood
	case confidence >= 0.7:
		return QualityGood
	case confidence >= 0.6:
		return QualityFair
	default:
		return QualityWeak
	}
}
