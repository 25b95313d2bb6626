package pipeline

import (
	"time"

	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

// ImputerStage is the Selective Imputer (§4.4): active only when Δ=30 min, it fills
// a half-hour slot for an hourly/mixed sensor only when both flanking hourly slots
// are present and valid. No forward/backward fill, no extrapolation.
type ImputerStage struct {
	Active bool // true iff the elected interval is 30 minutes
}

func (s *ImputerStage) Name() string { return "selective-imputer" }

func (s *ImputerStage) Apply(d *Dataset) (*Dataset, error) {
	if !s.Active {
		return d, nil
	}

	out := d.clone()
	for _, series := range out.Sensors {
		if series.Cadence != string(models.CadenceHourly) && series.Cadence != string(models.CadenceMixed) {
			continue // thirty-labeled sensors are never imputed
		}
		for _, t := range out.Axis {
			if t.Minute() != 30 {
				continue
			}
			if _, ok := series.Get(t); ok {
				continue // already has a real reading
			}
			before, okBefore := series.Get(t.Add(-30 * time.Minute))
			after, okAfter := series.Get(t.Add(30 * time.Minute))
			if okBefore && okAfter {
				series.Set(t, (before+after)/2)
			}
			// otherwise leave missing: no extrapolation, no one-sided fill.
		}
	}
	return out, nil
}
