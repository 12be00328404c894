package postcmd

// FeatureGates exposes runtime feature toggles required by post command
// handlers. Scheduling is the only gated transition; create, publish, and
// archive are core operations and always available.
type FeatureGates struct {
	SchedulingEnabled func() bool
}

func (g FeatureGates) schedulingEnabled() bool {
	if g.SchedulingEnabled == nil {
		return true
	}
	return g.SchedulingEnabled()
}
