package announce

import (
	"context"
	"fmt"
)

// Verdict is the outcome of comparing the photos with the declared condition.
type Verdict struct {
	Match   bool   `json:"match"`
	Message string `json:"message"`
}

type Analyzer interface {
	Analyze(ctx context.Context, photos []Photo, declared Checklist) (Verdict, error)
}

// ChecklistAnalyzer does not look at pixels. It accepts the declared
// condition when photos are present and the score is at least acceptable.
type ChecklistAnalyzer struct{}

func (ChecklistAnalyzer) Analyze(ctx context.Context, photos []Photo, declared Checklist) (Verdict, error) {
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}
	if len(photos) == 0 {
		return Verdict{}, ErrNoPhotos
	}
	score := declared.Score()
	label := Label(score)
	if score < 50 {
		return Verdict{
			Match:   false,
			Message: fmt.Sprintf("L'état déclaré (%s, %d/100) semble trop dégradé pour être vendu sans description détaillée.", label, score),
		}, nil
	}
	return Verdict{
		Match:   true,
		Message: fmt.Sprintf("Les %d photo(s) correspondent à l'état déclaré : %s (%d/100).", len(photos), label, score),
	}, nil
}
