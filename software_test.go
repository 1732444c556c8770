package lasca

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSoftwareEndToEnd4x4(t *testing.T) {
	cfg := Config{Width: 4, Height: 4, Alpha: 0, Beta: 0, ContrastGain: 1}
	p := newTestPipeline(t, cfg, endlessFrames(4, 4, 100))

	if _, err := p.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	mask, err := p.Mask()
	if err != nil {
		t.Fatalf("Mask() error = %v", err)
	}
	if diff := cmp.Diff(make([]uint8, 16), mask); diff != "" {
		t.Errorf("mask mismatch (-want +got):\n%s", diff)
	}

	acc, err := p.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	hundred := make([]float32, 16)
	for i := range hundred {
		hundred[i] = 100
	}
	if diff := cmp.Diff(hundred, acc.Intensity); diff != "" {
		t.Errorf("intensity (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(hundred, acc.SlowIntensity); diff != "" {
		t.Errorf("slow intensity (-want +got):\n%s", diff)
	}
	for _, i := range []int{5, 6, 9, 10} {
		if acc.BlurredIntensity[i] != 100 {
			t.Errorf("blurred mean at %d = %v, want 100", i, acc.BlurredIntensity[i])
		}
		if acc.BlurredSquaredIntensity[i] != 10000 {
			t.Errorf("blurred squared mean at %d = %v, want 10000", i, acc.BlurredSquaredIntensity[i])
		}
	}
}

func TestSoftwareAlphaZeroPassesThrough(t *testing.T) {
	const w, h = 6, 5
	frames := noiseFrames(w, h, 3)
	cfg := Config{Width: w, Height: h, Alpha: 0, Beta: 0.5, ContrastGain: 2600}
	p := newTestPipeline(t, cfg, &sliceSource{width: w, height: h, frames: frames})

	for n, f := range frames {
		if _, err := p.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: %v", n, err)
		}
		acc, err := p.Snapshot()
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range f {
			if acc.Intensity[i] != float32(v) || acc.SquaredIntensity[i] != float32(v)*float32(v) {
				t.Fatalf("tick %d pixel %d: I=%v S=%v, raw %d", n, i, acc.Intensity[i], acc.SquaredIntensity[i], v)
			}
		}
	}
}

func TestSoftwareAlphaOneFreezes(t *testing.T) {
	const w, h = 6, 6
	cfg := Config{Width: w, Height: h, Alpha: 1, Beta: 0.75, ContrastGain: 2600}
	p := newTestPipeline(t, cfg, &sliceSource{width: w, height: h, frames: noiseFrames(w, h, 4)})

	if err := p.Run(context.Background(), 4); err != nil {
		t.Fatal(err)
	}
	acc, err := p.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	zero := make([]float32, w*h)
	if diff := cmp.Diff(zero, acc.Intensity); diff != "" {
		t.Errorf("frozen intensity changed (-want +got):\n%s", diff)
	}
	mask, _ := p.Mask()
	if diff := cmp.Diff(make([]uint8, w*h), mask); diff != "" {
		t.Errorf("dark state should mask everything (-want +got):\n%s", diff)
	}
}

func TestSoftwareUniformImageConverges(t *testing.T) {
	const w, h = 8, 8
	p := newTestPipeline(t, DefaultConfig(w, h), endlessFrames(w, h, 100))

	if err := p.Run(context.Background(), 600); err != nil {
		t.Fatal(err)
	}
	mask, err := p.Mask()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(make([]uint8, w*h), mask); diff != "" {
		t.Errorf("uniform image should have zero contrast (-want +got):\n%s", diff)
	}
	acc, _ := p.Snapshot()
	if v := acc.BlurredIntensity[w+1]; v < 99.9 || v > 100.1 {
		t.Errorf("blurred mean = %v, want ~100", v)
	}
}

func TestSoftwareUniformImageMasksToZero(t *testing.T) {
	tests := []struct {
		name  string
		value uint8
	}{
		{"dark", 3},
		{"mid", 100},
		{"saturated", 252},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const w, h = 10, 8
			src := endlessFrames(w, h, tt.value)
			p := newTestPipeline(t, DefaultConfig(w, h), src)

			if err := p.Run(context.Background(), 600); err != nil {
				t.Fatal(err)
			}
			mask, err := p.Mask()
			if err != nil {
				t.Fatal(err)
			}
			assertBorderZero(t, mask, w, h)
			if diff := cmp.Diff(make([]uint8, w*h), mask); diff != "" {
				t.Errorf("uniform %d should mask everything (-want +got):\n%s", tt.value, diff)
			}
			if st := p.Stats(); st.Ticks != 600 || st.Replays != 0 || src.rewinds != 0 {
				t.Errorf("Stats() = %+v, rewinds %d", st, src.rewinds)
			}
			acc, err := p.Snapshot()
			if err != nil {
				t.Fatal(err)
			}
			if got, want := acc.BlurredIntensity[w+1], float32(tt.value); math.Abs(float64(got-want)) > 0.01 {
				t.Errorf("blurred mean = %v, want %v", got, want)
			}
		})
	}
}

func TestSoftwareNoiseMaskRangeAndBorder(t *testing.T) {
	const w, h = 16, 12
	p := newTestPipeline(t, DefaultConfig(w, h), &sliceSource{width: w, height: h, frames: noiseFrames(w, h, 20)})

	var valid int
	for range 20 {
		if _, err := p.Tick(context.Background()); err != nil {
			t.Fatal(err)
		}
		mask, err := p.Mask()
		if err != nil {
			t.Fatal(err)
		}
		assertBorderZero(t, mask, w, h)
		valid = ComputeMaskStats(mask).Valid
	}
	if valid == 0 {
		t.Error("noise input produced no valid contrast pixels")
	}
}

func TestSoftwareInteriorTemporalLeavesBorder(t *testing.T) {
	const w, h = 5, 5
	cfg := Config{Width: w, Height: h, Alpha: 0, Beta: 0, ContrastGain: 1, InteriorTemporal: true}
	p := newTestPipeline(t, cfg, endlessFrames(w, h, 100))

	if _, err := p.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	acc, _ := p.Snapshot()
	if acc.Intensity[0] != 0 || acc.Intensity[w+1] != 100 {
		t.Errorf("I[corner]=%v I[interior]=%v, want 0 and 100", acc.Intensity[0], acc.Intensity[w+1])
	}
	// (1,1) averages 4 interior pixels with 5 untouched border pixels.
	if got, want := acc.BlurredIntensity[w+1], float32(400)/9; got != want {
		t.Errorf("blurred (1,1) = %v, want %v", got, want)
	}
}

func TestSoftwareBackendClosed(t *testing.T) {
	s := NewSoftwareBackend(1)
	if err := s.Allocate(DefaultConfig(4, 4), nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if _, err := s.DispatchTemporal(Frame{Width: 4, Height: 4, Pix: make([]uint8, 16)}); !errors.Is(err, ErrClosed) {
		t.Errorf("DispatchTemporal after Close = %v, want ErrClosed", err)
	}
	if err := s.Reset(); !errors.Is(err, ErrClosed) {
		t.Errorf("Reset after Close = %v, want ErrClosed", err)
	}
}

func TestSoftwareSpatialWaitsForDependency(t *testing.T) {
	s := NewSoftwareBackend(2)
	if err := s.Allocate(DefaultConfig(4, 4), nil); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	want := errors.New("temporal failed")
	ev, err := s.DispatchSpatial(Completed(want))
	if err != nil {
		t.Fatal(err)
	}
	if err := ev.Wait(); !errors.Is(err, want) {
		t.Errorf("spatial event = %v, want dependency error", err)
	}
	if err := s.ReadMask(make([]uint8, 16), ev); !errors.Is(err, want) {
		t.Errorf("ReadMask = %v, want dependency error", err)
	}
}

func TestSoftwareWorkersDefault(t *testing.T) {
	if n := NewSoftwareBackend(0).Workers(); n < 1 {
		t.Errorf("Workers() = %d, want >= 1", n)
	}
}

func BenchmarkSoftwareTick1440x1080(b *testing.B) {
	const w, h = 1440, 1080
	p, err := New(DefaultConfig(w, h), &sliceSource{width: w, height: h, frames: noiseFrames(w, h, 4)}, nil,
		WithBackendName(BackendSoftware))
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()
	ctx := context.Background()
	for b.Loop() {
		if _, err := p.Tick(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
