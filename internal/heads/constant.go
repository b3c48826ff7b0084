package heads

// constant is the degraded stub a head falls back to when training
// fails or a modality has no signal. It scores every day with the train
// base rate (classification) or train mean return (regression), which
// carries no daily information, so the fusion fit drives the modality's
// weight toward zero through normal optimization rather than through a
// special case.
type constant struct {
	task  Task
	value float64
}

func newConstant(task Task) *constant {
	c := &constant{task: task}
	if task == Classification {
		c.value = 0.5
	}
	return c
}

// NewConstant returns an untrained stub scoring val everywhere. The
// orchestrator uses this when even the fallback fit failed.
func NewConstant(task Task, val float64) Model {
	return &constant{task: task, value: val}
}

func (c *constant) Family() string { return "constant" }

func (c *constant) Fit(ds Dataset) error {
	if ds.Len() == 0 {
		return nil
	}
	var sum float64
	for _, y := range ds.Y {
		sum += y
	}
	c.value = sum / float64(len(ds.Y))
	return nil
}

func (c *constant) Score(_ []float64) float64 {
	return c.value
}
