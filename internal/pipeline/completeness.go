package pipeline

import (
	"time"

	"github.com/jakartapm25/kelurahan-engine/internal/logging"
)

// CompletenessStage is the Completeness Filter (§4.5): keeps only timestamps with
// at least SMin active sensors. Rejected timestamps are dropped and logged (§7
// InsufficientDataWarning).
type CompletenessStage struct {
	SMin   int
	Logger *logging.Logger
}

func (s *CompletenessStage) Name() string { return "completeness-filter" }

func (s *CompletenessStage) Apply(d *Dataset) (*Dataset, error) {
	out := &Dataset{Interval: d.Interval, Sensors: d.Sensors}
	dropped := 0
	for _, t := range d.Axis {
		if d.ActiveCount(t) >= s.SMin {
			out.Axis = append(out.Axis, t)
		} else {
			dropped++
		}
	}
	if s.Logger != nil {
		s.Logger.WithFields(map[string]interface{}{
			"accepted": len(out.Axis),
			"dropped":  dropped,
			"s_min":    s.SMin,
		}).Info("applied completeness filter")
	}
	return out, nil
}

// ActiveCounts returns, for every timestamp on the axis, the number of active
// sensors — used by the representative-timestamp selection (§4.9).
func ActiveCounts(d *Dataset) map[time.Time]int {
	counts := make(map[time.Time]int, len(d.Axis))
	for _, t := range d.Axis {
		counts[t] = d.ActiveCount(t)
	}
	return counts
}
