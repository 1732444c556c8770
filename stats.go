package lasca

import "gonum.org/v1/gonum/stat"

// MaskStats summarizes the valid (non-zero) pixels of a mask.
type MaskStats struct {
	// Valid is the number of non-zero pixels.
	Valid int
	// Coverage is Valid divided by the total pixel count.
	Coverage float64
	// Mean and StdDev are the sample statistics of the valid pixels. Both
	// are zero when fewer than two pixels are valid.
	Mean   float64
	StdDev float64
	Max    uint8
}

// ComputeMaskStats summarizes mask.
func ComputeMaskStats(mask []uint8) MaskStats {
	var s MaskStats
	if len(mask) == 0 {
		return s
	}
	vals := make([]float64, 0, len(mask))
	for _, v := range mask {
		if v == 0 {
			continue
		}
		vals = append(vals, float64(v))
		s.Max = max(s.Max, v)
	}
	s.Valid = len(vals)
	s.Coverage = float64(s.Valid) / float64(len(mask))
	switch s.Valid {
	case 0:
	case 1:
		s.Mean = vals[0]
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	}
	return s
}
