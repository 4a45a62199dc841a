// Package assessment scores the marketing-funnel questionnaire that precedes
// lead capture.
package assessment

const MaxAnswerScore = 10

// Tiers
const (
	TierStarter = "starter"
	TierGrowing = "growing"
	TierReady   = "ready"
)

type Answer struct {
	QuestionID string `json:"questionId" validate:"required"`
	Score      int    `json:"score" validate:"gte=0,lte=10"`
}

type Result struct {
	Total   int    `json:"total"`
	Max     int    `json:"max"`
	Percent int    `json:"percent"`
	Tier    string `json:"tier"`
}

// Score sums the answers. Repeated question ids count once, last answer wins.
func Score(answers []Answer) Result {
	byQuestion := make(map[string]int, len(answers))
	for _, a := range answers {
		s := a.Score
		if s < 0 {
			s = 0
		}
		if s > MaxAnswerScore {
			s = MaxAnswerScore
		}
		byQuestion[a.QuestionID] = s
	}

	var r Result
	for _, s := range byQuestion {
		r.Total += s
	}
	r.Max = len(byQuestion) * MaxAnswerScore
	if r.Max > 0 {
		r.Percent = r.Total * 100 / r.Max
	}

	switch {
	case r.Percent < 40:
		r.Tier = TierStarter
	case r.Percent < 75:
		r.Tier = TierGrowing
	default:
		r.Tier = TierReady
	}
	return r
}
