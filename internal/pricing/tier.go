package pricing

// TierPoint is a single breakpoint on a declarative curve: at a given
// quantity or area, the curve yields this factor. Lists are kept strictly
// ascending on At.
type TierPoint struct {
	At     float64 `json:"at"`
	Factor float64 `json:"factor"`
}

// Interpolate resolves a factor from an ascending breakpoint list.
// Values at or below the first breakpoint get the first factor, values past
// the last breakpoint get the last factor (no extrapolation), and values in
// between are linearly interpolated. The floor is a hard lower clamp applied
// after interpolation so a misconfigured curve can never yield a factor
// below it.
func Interpolate(tiers []TierPoint, value, floor float64) float64 {
	if len(tiers) == 0 {
		return floor
	}
	if value <= tiers[0].At {
		return clampFloor(tiers[0].Factor, floor)
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].At >= value {
			prev, cur := tiers[i-1], tiers[i]
			t := (value - prev.At) / (cur.At - prev.At)
			return clampFloor(prev.Factor+(cur.Factor-prev.Factor)*t, floor)
		}
	}
	return clampFloor(tiers[len(tiers)-1].Factor, floor)
}

func clampFloor(v, floor float64) float64 {
	if v < floor {
		return floor
	}
	return v
}
