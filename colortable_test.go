package lasca

import "testing"

func TestTurboColorTableEndpoints(t *testing.T) {
	tbl := TurboColorTable()
	tests := []struct {
		index uint8
		want  [3]uint8
	}{
		{0, [3]uint8{0x30, 0x12, 0x3b}},
		{255, [3]uint8{0x7a, 0x04, 0x02}},
	}
	for _, tt := range tests {
		r, g, b := tbl.Lookup(tt.index)
		got := [3]uint8{r, g, b}
		for c := range 3 {
			if d := int(got[c]) - int(tt.want[c]); d < -1 || d > 1 {
				t.Errorf("turbo[%d] = %v, want %v (±1)", tt.index, got, tt.want)
				break
			}
		}
	}
}

func TestTurboColorTableIsNotGray(t *testing.T) {
	tbl := TurboColorTable()
	r, g, b := tbl.Lookup(128)
	if r == g && g == b {
		t.Errorf("turbo[128] = (%d,%d,%d), expected a hue", r, g, b)
	}
}

func TestGrayColorTable(t *testing.T) {
	tbl := GrayColorTable()
	for i := range 256 {
		r, g, b := tbl.Lookup(uint8(i))
		if int(r) != i || int(g) != i || int(b) != i {
			t.Fatalf("gray[%d] = (%d,%d,%d)", i, r, g, b)
		}
	}
}

func TestColorTableBytes(t *testing.T) {
	tbl := GrayColorTable()
	b := tbl.Bytes()
	if len(b) != 768 {
		t.Fatalf("len(Bytes()) = %d, want 768", len(b))
	}
	if b[3*200] != 200 || b[3*200+1] != 200 || b[3*200+2] != 200 {
		t.Errorf("entry 200 = %v", b[600:603])
	}
}
