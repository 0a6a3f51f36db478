package manchester

const (
	SpecialtyClinicaMedica = "clinica_medica"
	SpecialtyPediatria     = "pediatria"
	SpecialtyOrtopedia     = "ortopedia"
	SpecialtyGinecologia   = "ginecologia"
)

var specialtyLabels = map[string]string{
	SpecialtyClinicaMedica: "Clínica Médica",
	SpecialtyPediatria:     "Pediatria",
	SpecialtyOrtopedia:     "Ortopedia",
	SpecialtyGinecologia:   "Ginecologia e Obstetrícia",
}

// SpecialtyLabel returns the display label for a specialty key. Unknown keys
// are returned unchanged.
func SpecialtyLabel(key string) string {
	if label, ok := specialtyLabels[key]; ok {
		return label
	}
	return key
}

// KnownSpecialty reports whether key is one of the fixed specialty keys.
func KnownSpecialty(key string) bool {
	_, ok := specialtyLabels[key]
	return ok
}

// Specialty pairs a key with its label for listing endpoints.
type Specialty struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func Specialties() []Specialty {
	return []Specialty{
		{Key: SpecialtyClinicaMedica, Label: specialtyLabels[SpecialtyClinicaMedica]},
		{Key: SpecialtyPediatria, Label: specialtyLabels[SpecialtyPediatria]},
		{Key: SpecialtyOrtopedia, Label: specialtyLabels[SpecialtyOrtopedia]},
		{Key: SpecialtyGinecologia, Label: specialtyLabels[SpecialtyGinecologia]},
	}
}
