package pingpong

import "testing"

func TestRegistryInitialRoles(t *testing.T) {
	r := New("a", "b")
	if got := r.Slow(); got != "a" {
		t.Errorf("Slow() = %q, want %q", got, "a")
	}
	if got := r.Blur(); got != "b" {
		t.Errorf("Blur() = %q, want %q", got, "b")
	}
	if r.Current() != 0 {
		t.Errorf("Current() = %d, want 0", r.Current())
	}
}

func TestRegistrySwap(t *testing.T) {
	r := New(1, 2)
	r.Swap()
	if r.Slow() != 2 || r.Blur() != 1 {
		t.Errorf("after Swap: slow=%d blur=%d, want slow=2 blur=1", r.Slow(), r.Blur())
	}
	if r.Current() != 1 {
		t.Errorf("Current() = %d, want 1", r.Current())
	}
}

func TestRegistryDoubleSwapIsIdentity(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	r := New(a, b)
	r.Swap()
	r.Swap()
	if &r.Slow()[0] != &a[0] {
		t.Error("Slow() does not alias the original slow buffer after two swaps")
	}
	if &r.Blur()[0] != &b[0] {
		t.Error("Blur() does not alias the original blur buffer after two swaps")
	}
}

func TestRegistrySwapDoesNotCopy(t *testing.T) {
	a := []float32{1}
	b := []float32{2}
	r := New(a, b)
	r.Swap()
	r.Slow()[0] = 42
	if b[0] != 42 {
		t.Errorf("write through Slow() after Swap did not reach the original blur buffer: b[0]=%v", b[0])
	}
}

func TestRegistryZeroValue(t *testing.T) {
	var r Registry[int]
	if r.Slow() != 0 || r.Blur() != 0 || r.Current() != 0 {
		t.Errorf("zero Registry: slow=%d blur=%d current=%d", r.Slow(), r.Blur(), r.Current())
	}
}

func TestRegistryAtAndEach(t *testing.T) {
	r := New("x", "y")
	r.Swap()
	if r.At(0) != "x" || r.At(1) != "y" {
		t.Errorf("At ignores roles: At(0)=%q At(1)=%q", r.At(0), r.At(1))
	}
	var seen []string
	r.Each(func(i int, v string) { seen = append(seen, v) })
	if len(seen) != 2 || seen[0] != "x" || seen[1] != "y" {
		t.Errorf("Each visited %v, want [x y]", seen)
	}
}
