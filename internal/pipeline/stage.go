package pipeline

// Stage is one step of the normalize → impute → filter chain, matching the
// small Filter/Name/Description interface shape common to point-track
// filtering pipelines, but specialized to datasets instead of point tracks.
type Stage interface {
	Apply(d *Dataset) (*Dataset, error)
	Name() string
}

// Pipeline runs a fixed ordered chain of stages, feeding each stage's output
// to the next and stopping at the first error. It does no logging of its own.
type Pipeline struct {
	stages []Stage
}

func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Run(d *Dataset) (*Dataset, error) {
	current := d
	for _, stage := range p.stages {
		next, err := stage.Apply(current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
