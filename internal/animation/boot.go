package animation

// BootComplete is the progress value at which the fade-in is finished.
const BootComplete = 100

// DefaultBootStep is the progress added per startup tick.
const DefaultBootStep = 2

// Boot tracks the one-time fade-in. Progress only increases and stops at
// BootComplete.
type Boot struct {
	progress int
	step     int
}

// NewBoot returns a Boot at zero progress. A step outside 1..100 falls back
// to DefaultBootStep.
func NewBoot(step int) *Boot {
	if step < 1 || step > BootComplete {
		step = DefaultBootStep
	}
	return &Boot{step: step}
}

// Tick advances progress by one step. It returns true while the startup
// schedule should keep running, and false once progress has reached
// BootComplete.
func (b *Boot) Tick() bool {
	if b.progress >= BootComplete {
		return false
	}
	b.progress = min(b.progress+b.step, BootComplete)
	return b.progress < BootComplete
}

// Progress returns the current progress in [0, 100].
func (b *Boot) Progress() int {
	return b.progress
}

// Done reports whether the fade-in has finished.
func (b *Boot) Done() bool {
	return b.progress >= BootComplete
}

// Opacity returns the global opacity to draw with: progress/100 while
// booting, 1 afterwards.
func (b *Boot) Opacity() float64 {
	return OpacityFor(b.progress)
}

// OpacityFor maps a progress value to an opacity.
func OpacityFor(progress int) float64 {
	if progress >= BootComplete {
		return 1.0
	}
	if progress <= 0 {
		return 0
	}
	return float64(progress) / BootComplete
}
