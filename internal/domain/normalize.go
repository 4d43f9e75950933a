package domain

import "gonum.org/v1/gonum/floats"

// Field names reported in Result.DegenerateFields.
const (
	FieldWidth     = "width"
	FieldLength    = "length"
	FieldSOG       = "sog"
	FieldEmissions = "emissions"
)

// NormalizedReport is a VesselReport with its size and speed features min-max
// normalized over the whole filtered set.
type NormalizedReport struct {
	VesselReport
	WidthNorm  float64
	LengthNorm float64
	SOGNorm    float64
}

// minMax rescales values into [0,1] over their own range.
type minMax struct {
	min, span float64
}

// newMinMax fits a scaler to values. ok is false when values is empty or
// constant; such a scaler maps everything to 0.
func newMinMax(values []float64) (s minMax, ok bool) {
	if len(values) == 0 {
		return minMax{}, false
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if hi == lo {
		return minMax{min: lo}, false
	}
	return minMax{min: lo, span: hi - lo}, true
}

func (s minMax) scale(v float64) float64 {
	if s.span == 0 {
		return 0
	}
	return (v - s.min) / s.span
}

// Normalize computes widthNorm, lengthNorm and sogNorm for every report, using
// the min and max of each field over the entire input. A constant field
// normalizes to 0 everywhere and is listed in the returned degenerate slice.
// Reports without SOG get sogNorm 0; SOG's range is taken over reports that
// carry it.
func Normalize(reports []VesselReport) ([]NormalizedReport, []string) {
	if len(reports) == 0 {
		return nil, nil
	}

	widths := make([]float64, len(reports))
	lengths := make([]float64, len(reports))
	sogs := make([]float64, 0, len(reports))
	for i, r := range reports {
		widths[i] = r.Width
		lengths[i] = r.Length
		if r.SOG != nil {
			sogs = append(sogs, *r.SOG)
		}
	}

	var degenerate []string
	widthScale, ok := newMinMax(widths)
	if !ok {
		degenerate = append(degenerate, FieldWidth)
	}
	lengthScale, ok := newMinMax(lengths)
	if !ok {
		degenerate = append(degenerate, FieldLength)
	}
	sogScale, ok := newMinMax(sogs)
	if !ok {
		degenerate = append(degenerate, FieldSOG)
	}

	out := make([]NormalizedReport, len(reports))
	for i, r := range reports {
		n := NormalizedReport{
			VesselReport: r,
			WidthNorm:    widthScale.scale(r.Width),
			LengthNorm:   lengthScale.scale(r.Length),
		}
		if r.SOG != nil {
			n.SOGNorm = sogScale.scale(*r.SOG)
		}
		out[i] = n
	}
	return out, degenerate
}
