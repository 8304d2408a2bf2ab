package pipeline

// Collapse picks the stage a change is currently in.
//
// The first stage is current by default. Walking the remaining stages in order,
// each stage the change has entered becomes current; the walk stops at the first
// stage still un-entered. An empty list has no current stage and returns nil.
//
// Terminal statuses do not stop the walk: [passed, failed, running] collapses to
// the running stage.
func Collapse(stages []StageState) *StageState {
	if len(stages) == 0 {
		return nil
	}

	current := stages[0]
	for _, s := range stages[1:] {
		if s.Status.Type == StatusUnEntered {
			break
		}
		current = s
	}
	return &current
}
