package domain

// Navigational statuses kept by the filter.
const (
	StatusUnderWayUsingEngine       = "Under way using engine"
	StatusEngagedInFishing          = "Engaged in fishing"
	StatusRestrictedManeuverability = "Restricted maneuverability"
)

// Ship types kept by the filter.
const (
	ShipTypeTanker        = "Tanker"
	ShipTypeCargo         = "Cargo"
	ShipTypeMilitary      = "Military"
	ShipTypeFishing       = "Fishing"
	ShipTypeDredging      = "Dredging"
	ShipTypePassenger     = "Passenger"
	ShipTypeTug           = "Tug"
	ShipTypeAntiPollution = "Anti-pollution"
)

// ActivityWeights is the emissions weight of each navigational status. Its
// key set is also the status allow-list used by Keep.
var ActivityWeights = map[string]float64{
	StatusUnderWayUsingEngine:       50,
	StatusEngagedInFishing:          30,
	StatusRestrictedManeuverability: 20,
}

// ShipTypeWeights is the emissions weight of each ship type. Its key set is
// also the ship type allow-list used by Keep.
var ShipTypeWeights = map[string]float64{
	ShipTypeTanker:        300,
	ShipTypeCargo:         300,
	ShipTypeMilitary:      200,
	ShipTypeFishing:       100,
	ShipTypeDredging:      50,
	ShipTypePassenger:     30,
	ShipTypeTug:           20,
	ShipTypeAntiPollution: 0,
}

// Size-term coefficients of the emissions heuristic.
const (
	widthCoefficient  = 75
	lengthCoefficient = 100
)

// ScoredReport carries every derived feature of a report.
type ScoredReport struct {
	NormalizedReport
	ActivityWeight float64
	ShipTypeWeight float64
	Emissions      float64
	EmissionsNorm  float64
}

// Emissions evaluates the pollution heuristic for one report:
//
//	(activity + shipType) × (1 + sogNorm) + (75 × widthNorm) × (100 × lengthNorm) × sogNorm
func Emissions(activityWeight, shipTypeWeight, widthNorm, lengthNorm, sogNorm float64) float64 {
	return (activityWeight+shipTypeWeight)*(1+sogNorm) +
		(widthCoefficient*widthNorm)*(lengthCoefficient*lengthNorm)*sogNorm
}

// Score looks up both weights, evaluates Emissions per report, and min-max
// normalizes the result over the whole set. degenerate is true when every
// report has the same emissions, in which case EmissionsNorm is 0 throughout.
func Score(reports []NormalizedReport) (scored []ScoredReport, degenerate bool) {
	if len(reports) == 0 {
		return nil, false
	}

	scored = make([]ScoredReport, len(reports))
	raw := make([]float64, len(reports))
	for i, r := range reports {
		activity := ActivityWeights[r.NavigationalStatus]
		shipType := ShipTypeWeights[r.ShipType]
		e := Emissions(activity, shipType, r.WidthNorm, r.LengthNorm, r.SOGNorm)
		scored[i] = ScoredReport{
			NormalizedReport: r,
			ActivityWeight:   activity,
			ShipTypeWeight:   shipType,
			Emissions:        e,
		}
		raw[i] = e
	}

	scale, ok := newMinMax(raw)
	for i := range scored {
		scored[i].EmissionsNorm = scale.scale(scored[i].Emissions)
	}
	return scored, !ok
}
