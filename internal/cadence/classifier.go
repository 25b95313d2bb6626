// Package cadence implements the Cadence Classifier (spec §4.2): labels each sensor's
// reporting pattern and elects the single global interval for the run.
package cadence

import (
	"math"

	"github.com/jakartapm25/kelurahan-engine/internal/config"
	"github.com/jakartapm25/kelurahan-engine/internal/logging"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

// fraction computes f = (valid readings at minute==30) / (slots at minute==30) for one sensor.
// f is NaN when the sensor has no slot at minute==30; Label maps that to CadenceOther.
func fraction(ms []models.Measurement) float64 {
	var validAtHalf, slotsAtHalf int
	for _, m := range ms {
		if m.Datetime.Minute() != 30 {
			continue
		}
		slotsAtHalf++
		if m.Valid {
			validAtHalf++
		}
	}
	if slotsAtHalf == 0 {
		return math.NaN()
	}
	return float64(validAtHalf) / float64(slotsAtHalf)
}

// Label classifies a single sensor's measurements per the §3 thresholds.
func Label(ms []models.Measurement) models.Cadence {
	f := fraction(ms)
	switch {
	case f > 0.7:
		return models.CadenceThirty
	case f < 0.3:
		return models.CadenceHourly
	case f >= 0.3 && f <= 0.7:
		return models.CadenceMixed
	default:
		return models.CadenceOther
	}
}

// Result is the per-sensor labels, the summary table, and the elected global interval.
type Result struct {
	Labels   map[string]models.Cadence
	Summary  models.CadenceSummary
	Interval models.Interval
}

// Classify labels every sensor's measurements and elects Δ (§3, §4.2).
// Tie policy defaults to "more conservative" (60 min) per spec §4.2, but is
// configurable via cfg.IntervalTie (§6 Open Question resolution carried in SPEC_FULL).
func Classify(bySensor map[string][]models.Measurement, tie config.IntervalTiePolicy, log *logging.Logger) Result {
	labels := make(map[string]models.Cadence, len(bySensor))
	var summary models.CadenceSummary

	for sensorID, ms := range bySensor {
		label := Label(ms)
		labels[sensorID] = label
		summary.Total++
		switch label {
		case models.CadenceThirty:
			summary.Thirty++
		case models.CadenceHourly:
			summary.Hourly++
		case models.CadenceMixed:
			summary.Mixed++
		default:
			summary.Other++
		}
	}

	var interval models.Interval
	switch {
	case summary.Thirty > summary.Hourly:
		interval = models.IntervalThirtyMin
	case summary.Thirty < summary.Hourly:
		interval = models.IntervalHourly
	default:
		if tie == config.TiePrefer30Min {
			interval = models.IntervalThirtyMin
		} else {
			interval = models.IntervalHourly
		}
	}

	log.WithFields(map[string]interface{}{
		"thirty": summary.Thirty, "hourly": summary.Hourly,
		"mixed": summary.Mixed, "other": summary.Other,
		"interval_minutes": interval.Duration().Minutes(),
	}).Info("elected global sampling interval")

	return Result{Labels: labels, Summary: summary, Interval: interval}
}
