package scan

// Filter returns the subsequence of readings inside the angular cone
// [center-halfWidth, center+halfWidth] and strictly farther than minDistance,
// preserving the original reading order. The input is normalized to radians
// first; the result is always in radians. An empty result is valid.
//
// Readings at or below minDistance are treated as sensor noise (returns from
// the hull, spray) and discarded.
func Filter(s Scan, center, halfWidth, minDistance float64) (Scan, error) {
	norm, err := s.Normalized()
	if err != nil {
		return Scan{}, err
	}

	out := Scan{Unit: Radians}
	for i, a := range norm.Angles {
		if a < center-halfWidth || a > center+halfWidth {
			continue
		}
		if norm.Distances[i] <= minDistance {
			continue
		}
		out.Distances = append(out.Distances, norm.Distances[i])
		out.Angles = append(out.Angles, a)
	}
	return out, nil
}
