package trips

import "fmt"

// Labels names the zones the pipeline treats specially.
type Labels struct {
	Entry string `yaml:"entry"`
	Exit  string `yaml:"exit"`

	// Weighing may be visited twice per trip, once on arrival and once
	// before leaving. TransitToWeighing is the leg leading into it.
	Weighing          string `yaml:"weighing"`
	TransitToWeighing string `yaml:"transit_to_weighing"`

	InitialSuffix string `yaml:"initial_suffix"`
	FinalSuffix   string `yaml:"final_suffix"`
}

func DefaultLabels() Labels {
	return Labels{
		Entry:             "En Asignación",
		Exit:              "Desasignación",
		Weighing:          "Balanza",
		TransitToWeighing: "Ruta hacia Balanza",
		InitialSuffix:     "inicial",
		FinalSuffix:       "final",
	}
}

func (l Labels) WeighingInitial() string {
	return fmt.Sprintf("%s %s", l.Weighing, l.InitialSuffix)
}

func (l Labels) WeighingFinal() string {
	return fmt.Sprintf("%s %s", l.Weighing, l.FinalSuffix)
}

func (l Labels) TransitInitial() string {
	return fmt.Sprintf("%s %s", l.TransitToWeighing, l.InitialSuffix)
}

func (l Labels) TransitFinal() string {
	return fmt.Sprintf("%s %s", l.TransitToWeighing, l.FinalSuffix)
}

// DefaultLabelAliases maps informal spellings seen in the field to their
// canonical zone names.
func DefaultLabelAliases() map[string]string {
	return map[string]string{
		"Calificacion": "Calificación",
		"Iman Core":    "Imán",
	}
}

// DefaultUnloadZones are the visit labels summed into the unload duration.
// Alias spellings are listed too so a run with a partial alias table still
// counts them.
func DefaultUnloadZones() []string {
	return []string{
		"Balanza", "Balanza final", "Balanza inicial", "Barrido",
		"Calificacion", "Calificación", "Consumo", "Desasignación",
		"Descarga", "Desmanteo", "Embutición", "Iman Core", "Imán",
		"Oxicorte", "Ruta hacia Balanza", "Ruta hacia Balanza final",
		"Ruta hacia Balanza inicial", "Ruta hacia Barrido",
		"Ruta hacia Calificacion", "Ruta hacia Calificación",
		"Ruta hacia Consumo", "Ruta hacia Descarga",
		"Ruta hacia Desmanteo", "Ruta hacia Embutición",
		"Ruta hacia Imán", "Ruta hacia Oxicorte",
	}
}

// CanonicalizeLabels rewrites known alias spellings of zone names. Unknown
// labels pass through unchanged.
func CanonicalizeLabels(table Table, aliases map[string]string) Table {
	out := table.Clone()

	for i := range out {
		if canonical, exists := aliases[out[i].Zone]; exists {
			out[i].Zone = canonical
		}
		out[i].VisitLabel = out[i].Zone
	}

	return out
}
