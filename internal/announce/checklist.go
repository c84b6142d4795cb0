package announce

import (
	"fmt"
	"math"
)

type Category string

const (
	CategoryPage        Category = "page"
	CategoryBinding     Category = "binding"
	CategoryCover       Category = "cover"
	CategoryDamages     Category = "damages"
	CategoryAccessories Category = "accessories"
)

type Check struct {
	Key    string
	Label  string
	Weight int
}

type CategorySpec struct {
	Category Category
	Label    string
	Checks   []Check
}

// Rubric lists every category and its weighted checks. Each category's
// weights add up to 100. "extras" is recorded but weighs nothing.
var Rubric = []CategorySpec{
	{CategoryPage, "Pages", []Check{
		{"no_missing", "Aucune page manquante", 40},
		{"no_torn", "Aucune page déchirée", 30},
		{"clean", "Pages propres, sans annotations", 30},
	}},
	{CategoryBinding, "Reliure", []Check{
		{"no_loose", "Aucune page détachée", 40},
		{"no_falling", "La reliure ne se défait pas", 40},
		{"stable", "Dos solide et stable", 20},
	}},
	{CategoryCover, "Couverture", []Check{
		{"no_detachment", "Couverture bien attachée", 50},
		{"clean", "Couverture propre", 25},
		{"no_scratches", "Sans rayures ni pliures", 25},
	}},
	{CategoryDamages, "Dommages", []Check{
		{"no_burns", "Aucune brûlure ni tache d'eau", 40},
		{"no_smell", "Aucune odeur", 30},
		{"no_insects", "Aucune trace d'insectes", 30},
	}},
	{CategoryAccessories, "Accessoires", []Check{
		{"complete", "Livre complet (CD, annexes…)", 50},
		{"content_intact", "Contenu intact", 50},
		{"extras", "Extras fournis", 0},
	}},
}

func specFor(cat Category) (CategorySpec, bool) {
	for _, s := range Rubric {
		if s.Category == cat {
			return s, true
		}
	}
	return CategorySpec{}, false
}

func checkWeight(cat Category, key string) (int, bool) {
	spec, ok := specFor(cat)
	if !ok {
		return 0, false
	}
	for _, c := range spec.Checks {
		if c.Key == key {
			return c.Weight, true
		}
	}
	return 0, false
}

// Checklist records which checks are ticked, per category.
type Checklist map[Category]map[string]bool

// NewChecklist returns a checklist with every check present and unticked.
func NewChecklist() Checklist {
	return filledChecklist(false)
}

// FullChecklist returns a checklist with every check ticked.
func FullChecklist() Checklist {
	return filledChecklist(true)
}

func filledChecklist(on bool) Checklist {
	c := make(Checklist, len(Rubric))
	for _, s := range Rubric {
		c[s.Category] = make(map[string]bool, len(s.Checks))
		for _, chk := range s.Checks {
			c[s.Category][chk.Key] = on
		}
	}
	return c
}

func (c Checklist) Clone() Checklist {
	out := make(Checklist, len(c))
	for cat, checks := range c {
		m := make(map[string]bool, len(checks))
		for k, v := range checks {
			m[k] = v
		}
		out[cat] = m
	}
	return out
}

func (c Checklist) Checked(cat Category, key string) bool {
	return c[cat][key]
}

func (c Checklist) Set(cat Category, key string, on bool) error {
	if _, ok := checkWeight(cat, key); !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownCheck, cat, key)
	}
	if c[cat] == nil {
		c[cat] = make(map[string]bool)
	}
	c[cat][key] = on
	return nil
}

func (c Checklist) Toggle(cat Category, key string) error {
	return c.Set(cat, key, !c.Checked(cat, key))
}

// Validate rejects checks that are not part of the rubric.
func (c Checklist) Validate() error {
	for cat, checks := range c {
		for key := range checks {
			if _, ok := checkWeight(cat, key); !ok {
				return fmt.Errorf("%w: %s.%s", ErrUnknownCheck, cat, key)
			}
		}
	}
	return nil
}

// CategoryScore is the weighted sum of the ticked checks of cat.
func (c Checklist) CategoryScore(cat Category) int {
	spec, ok := specFor(cat)
	if !ok {
		return 0
	}
	total := 0
	for _, chk := range spec.Checks {
		if c[cat][chk.Key] {
			total += chk.Weight
		}
	}
	return total
}

// Score is the mean of the five category scores, rounded half away from zero.
func (c Checklist) Score() int {
	sum := 0
	for _, s := range Rubric {
		sum += c.CategoryScore(s.Category)
	}
	return int(math.Round(float64(sum) / float64(len(Rubric))))
}

// FinalPrice derives the asking price from the market price and a score.
func FinalPrice(marketPrice float64, score int) float64 {
	return math.Floor(marketPrice * float64(score) / 100)
}
