package announce

// Condition is the condition value the backend accepts on an announcement.
type Condition string

const (
	ConditionNew        Condition = "Neuf"
	ConditionLikeNew    Condition = "Comme neuf"
	ConditionGood       Condition = "Bon état"
	ConditionAcceptable Condition = "État acceptable"
	ConditionUsed       Condition = "Usagé"
)

// Label is the human readable grade for a score.
func Label(score int) string {
	switch {
	case score >= 95:
		return "Comme neuf"
	case score >= 85:
		return "Très bon état"
	case score >= 70:
		return "Bon état"
	case score >= 50:
		return "État acceptable"
	default:
		return "Usagé"
	}
}

// ConditionFor maps a score onto the backend enum. The backend has no
// "very good" grade, so 70 through 94 all become ConditionGood.
func ConditionFor(score int) Condition {
	switch {
	case score >= 95:
		return ConditionLikeNew
	case score >= 70:
		return ConditionGood
	case score >= 50:
		return ConditionAcceptable
	default:
		return ConditionUsed
	}
}

// Assessment bundles everything derived from a checklist and a market price.
type Assessment struct {
	Categories map[Category]int `json:"categories"`
	Score      int              `json:"score"`
	Label      string           `json:"label"`
	Condition  Condition        `json:"condition"`
	Price      float64          `json:"price"`
}

func Assess(c Checklist, marketPrice float64) Assessment {
	a := Assessment{Categories: make(map[Category]int, len(Rubric))}
	for _, s := range Rubric {
		a.Categories[s.Category] = c.CategoryScore(s.Category)
	}
	a.Score = c.Score()
	a.Label = Label(a.Score)
	a.Condition = ConditionFor(a.Score)
	a.Price = FinalPrice(marketPrice, a.Score)
	return a
}

func (c Condition) String() string { return string(c) }
