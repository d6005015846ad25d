package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Map is a monotone piecewise-linear mapping from raw confidence to
// calibrated confidence.
type Map struct {
	Xs []float64 `json:"xs"`
	Ys []float64 `json:"ys"`
}

// Valid reports whether the map has enough well-formed points to apply.
// Xs must be strictly increasing or interpolation loses monotonicity.
func (m *Map) Valid() bool {
	if m == nil || len(m.Xs) != len(m.Ys) || len(m.Xs) < 2 {
		return false
	}
	for i := 1; i < len(m.Xs); i++ {
		if m.Xs[i] <= m.Xs[i-1] {
			return false
		}
	}
	return true
}

// Load reads a calibration map from a JSON file. A missing or malformed file
// yields a nil map, which Apply treats as the identity.
func Load(path string) (*Map, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read calibration map: %w", err)
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse calibration map: %w", err)
	}
	if !m.Valid() {
		return nil, nil
	}
	return &m, nil
}

// Save writes the map to a JSON file.
func (m *Map) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode calibration map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write calibration map: %w", err)
	}
	return nil
}

// Apply maps a raw confidence through the calibration curve by piecewise
// linear interpolation, clamping to the end points. A nil or invalid map is
// the identity.
func Apply(conf float64, m *Map) float64 {
	if !m.Valid() {
		return conf
	}
	xs, ys := m.Xs, m.Ys
	if conf <= xs[0] {
		return ys[0]
	}
	if conf >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	for i := 0; i < len(xs)-1; i++ {
		if conf >= xs[i] && conf <= xs[i+1] {
			t := (conf - xs[i]) / (xs[i+1] - xs[i])
			return ys[i] + t*(ys[i+1]-ys[i])
		}
	}
	return conf
}

// Sample is one labeled observation for fitting: a raw score and whether the
// identification was judged correct.
type Sample struct {
	Score float64 `json:"score"`
	Label int     `json:"label"`
}

// FitIsotonic fits a monotone calibration curve to labeled samples using
// pool-adjacent violators, collapsing duplicate scores by averaging.
func FitIsotonic(samples []Sample) *Map {
	sorted := append([]Sample(nil), samples...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, s := range sorted {
		xs[i] = s.Score
		ys[i] = float64(s.Label)
	}

	for i := 0; i < len(ys)-1; {
		if ys[i] <= ys[i+1] {
			i++
			continue
		}
		j := i
		k := i + 1
		sum := ys[i] + ys[i+1]
		count := 2.0
		for j > 0 && sum/count < ys[j-1] {
			j--
			sum += ys[j]
			count++
		}
		avg := sum / count
		for t := j; t <= k; t++ {
			ys[t] = avg
		}
		i = k
	}

	var uniqXs, uniqYs []float64
	for idx := range xs {
		if idx == 0 || xs[idx] != xs[idx-1] {
			uniqXs = append(uniqXs, xs[idx])
			uniqYs = append(uniqYs, ys[idx])
		} else {
			uniqYs[len(uniqYs)-1] = (uniqYs[len(uniqYs)-1] + ys[idx]) / 2
		}
	}
	return &Map{Xs: uniqXs, Ys: uniqYs}
}
