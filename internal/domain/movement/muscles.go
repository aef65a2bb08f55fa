package movement

// Imbalance lists muscles likely overactive and underactive given a set of
// failed checks.
type Imbalance struct {
	Over  []string `json:"over"`
	Under []string `json:"under"`
}

type muscleGroups struct {
	over, under []string
}

var muscleMap = map[string]muscleGroups{
	"Toes Turn Out": {
		over:  []string{"Lateral Calf", "Anterior Tib", "Piriformis"},
		under: []string{"Medial Calf", "Posterior Tib", "Posterior Glute Med"},
	},
	KneeValgus: {
		over:  []string{"Adductor Magnus"},
		under: []string{"Glute Med", "Piriformis"},
	},
	"Thigh ADD/IR": {
		over:  []string{"Adductor Magnus", "TFL"},
		under: []string{"Glute Med", "Piriformis", "Glute Max"},
	},
	"Hip Shift OBS": {
		over:  []string{"Adductor Magnus", "TFL"},
		under: []string{"Glute Med", "Piriformis", "Glute Max"},
	},
	ContralateralHipDrop: {
		over:  []string{"Adductor Magnus"},
		under: []string{"Glute Med", "Piriformis", "Glute Max"},
	},
	"Anterior Pelvic Rotation": {
		over:  []string{"Adductor Magnus", "TFL"},
		under: []string{"Glute Max", "Piriformis", "TVA"},
	},
	"Excessive Trunk Flexion": {
		over:  []string{"Psoas", "QL", "Upper Quad", "Core"},
		under: []string{"Back Extensors", "Lat Dorsi", "Hamstring"},
	},
	ExcessiveLumbarLordosis: {
		over:  []string{"Psoas", "Lat Dorsi", "LBF"},
		under: []string{"TVA", "Hamstring"},
	},
	"Hip Hike": {
		over:  []string{"TFL/ITB", "Piriformis", "Glute Med"},
		under: []string{"External Oblique", "Adductor"},
	},
}

// AnalyzeMuscles maps every failed check to its muscle groups. Each muscle
// appears once, in the order first reached. Labels without a mapping are
// ignored.
func AnalyzeMuscles(tests *Tests) Imbalance {
	out := Imbalance{Over: []string{}, Under: []string{}}
	seenOver := make(map[string]bool)
	seenUnder := make(map[string]bool)
	for _, cat := range tests.Categories() {
		for _, chk := range cat.Checks {
			if !chk.Failed {
				continue
			}
			g, ok := muscleMap[chk.Label]
			if !ok {
				continue
			}
			out.Over = appendUnique(out.Over, seenOver, g.over)
			out.Under = appendUnique(out.Under, seenUnder, g.under)
		}
	}
	return out
}

func appendUnique(dst []string, seen map[string]bool, src []string) []string {
	for _, m := range src {
		if !seen[m] {
			seen[m] = true
			dst = append(dst, m)
		}
	}
	return dst
}
