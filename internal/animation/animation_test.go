package animation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNeedleVibration(t *testing.T) {
	tests := []struct {
		name   string
		t      float64
		rpm    float64
		maxRPM float64
		want   float64
	}{
		{"zero at t=0", 0, 8000, 16000, 0},
		{"peak idle", math.Pi / 40, 0, 16000, 0.5},
		{"peak half max", math.Pi / 40, 8000, 16000, 1.0},
		{"trough redline", 3 * math.Pi / 40, 16000, 16000, -1.5},
		{"default max when unset", math.Pi / 40, 16000, 0, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NeedleVibration(tt.t, tt.rpm, tt.maxRPM), 1e-9)
		})
	}
}

func TestAlertBlink_Range(t *testing.T) {
	for i := 0; i < 10000; i++ {
		v := AlertBlink(float64(i) * 0.0137)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.InDelta(t, 0.5, AlertBlink(0), 1e-12)
	assert.InDelta(t, 1.0, AlertBlink(math.Pi/16), 1e-12)
	assert.InDelta(t, 0.0, AlertBlink(3*math.Pi/16), 1e-12)
}

func TestClock_At(t *testing.T) {
	epoch := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(epoch, 16000)

	now := epoch.Add(1500 * time.Millisecond)
	st := c.At(now, 4000, 42)

	assert.Equal(t, 42, st.StartupProgress)
	assert.InDelta(t, NeedleVibration(1.5, 4000, 16000), st.NeedleVibration, 1e-12)
	assert.InDelta(t, AlertBlink(1.5), st.AlertBlink, 1e-12)
	assert.InDelta(t, 1.5, c.Seconds(now), 1e-12)
}

func TestClock_DefaultMaxRPM(t *testing.T) {
	epoch := time.Unix(0, 0)
	c := NewClock(epoch, -1)
	// sin(t*20) peaks at t = pi/40.
	peak := math.Pi / 40
	now := epoch.Add(time.Duration(peak * float64(time.Second)))

	assert.InDelta(t, 1.5, c.At(now, 16000, 0).NeedleVibration, 1e-6)
}

func TestBoot_Monotonic(t *testing.T) {
	steps := []int{1, 2, 3, 7, 33, 50, 99, 100}

	for _, step := range steps {
		b := NewBoot(step)
		want := int(math.Ceil(100 / float64(step)))

		prev := b.Progress()
		ticks := 0
		for b.Tick() {
			ticks++
			assert.GreaterOrEqual(t, b.Progress(), prev, "step %d", step)
			assert.LessOrEqual(t, b.Progress(), 100, "step %d", step)
			prev = b.Progress()
		}
		ticks++ // the tick that completed the boot returned false

		assert.Equal(t, want, ticks, "step %d", step)
		assert.Equal(t, 100, b.Progress(), "step %d", step)
		assert.True(t, b.Done())

		assert.False(t, b.Tick(), "further ticks are no-ops")
		assert.Equal(t, 100, b.Progress())
	}
}

func TestBoot_DefaultStep(t *testing.T) {
	b := NewBoot(0)
	b.Tick()
	assert.Equal(t, DefaultBootStep, b.Progress())

	b = NewBoot(500)
	b.Tick()
	assert.Equal(t, DefaultBootStep, b.Progress())
}

func TestBoot_Opacity(t *testing.T) {
	b := NewBoot(25)
	assert.Equal(t, 0.0, b.Opacity())

	b.Tick()
	assert.Equal(t, 0.25, b.Opacity())
	b.Tick()
	b.Tick()
	assert.Equal(t, 0.75, b.Opacity())
	b.Tick()
	assert.Equal(t, 1.0, b.Opacity())

	assert.Equal(t, 1.0, OpacityFor(150))
	assert.Equal(t, 0.0, OpacityFor(-5))
	assert.Equal(t, 0.5, OpacityFor(50))
}
