package manchester

// Vitals is the fixed set of measurements recorded at triage. Nil fields
// were not measured.
type Vitals struct {
	BloodPressureSys *int     `json:"blood_pressure_sys,omitempty"`
	BloodPressureDia *int     `json:"blood_pressure_dia,omitempty"`
	HeartRate        *int     `json:"heart_rate,omitempty"`
	RespiratoryRate  *int     `json:"respiratory_rate,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	OxygenSaturation *int     `json:"oxygen_saturation,omitempty"`
	Glucose          *int     `json:"glucose,omitempty"`
	GlasgowComaScore *int     `json:"glasgow_coma_score,omitempty"`
}

// SuggestPriority applies the general discriminators of the protocol to a
// flow's default priority. The result never drops below the default and is
// clamped to the flow's allowed range. It is advisory: the nurse records the
// final color.
func SuggestPriority(flow ClinicalFlow, v Vitals, pain *int) Priority {
	p := flow.DefaultPriority
	if !p.Valid() {
		p = PriorityGreen
	}
	p = maxPriority(p, vitalsPriority(v))
	if pain != nil {
		switch {
		case *pain >= 8:
			p = maxPriority(p, PriorityOrange)
		case *pain >= 5:
			p = maxPriority(p, PriorityYellow)
		}
	}
	if flow.MinPriority.Valid() && flow.MaxPriority.Valid() {
		p = clamp(p, flow.MinPriority, flow.MaxPriority)
	}
	return p
}

func vitalsPriority(v Vitals) Priority {
	switch {
	case lessThan(v.OxygenSaturation, 90),
		atMost(v.GlasgowComaScore, 8),
		lessThan(v.Glucose, 40):
		return PriorityRed
	case lessThan(v.OxygenSaturation, 95),
		greaterThan(v.HeartRate, 130),
		lessThan(v.HeartRate, 40),
		greaterThan(v.RespiratoryRate, 30),
		greaterThan(v.BloodPressureSys, 220),
		lessThan(v.BloodPressureSys, 90),
		greaterThan(v.Glucose, 400),
		v.Temperature != nil && *v.Temperature >= 41:
		return PriorityOrange
	case v.Temperature != nil && *v.Temperature >= 38.5,
		lessThan(v.GlasgowComaScore, 15):
		return PriorityYellow
	}
	return PriorityBlue
}

func lessThan(v *int, n int) bool    { return v != nil && *v < n }
func greaterThan(v *int, n int) bool { return v != nil && *v > n }
func atMost(v *int, n int) bool      { return v != nil && *v <= n }
