package detect

import "catlens/internal/domain"

// AspectOverride accepts a candidate pair on the strength of a single
// aspect, regardless of the combined score. A near-identical title is
// stronger duplicate evidence than a middling blended score.
type AspectOverride struct {
	Aspect   domain.Aspect
	MinScore float64
}

// Policy is the acceptance rule for candidate pairs: a pair is accepted
// when any aspect override fires or the combined score reaches the
// combined threshold. Both bounds are inclusive.
type Policy struct {
	CombinedThreshold float64
	Overrides         []AspectOverride
}

func (p Policy) Accept(aspectScores map[domain.Aspect]float64, combined float64) bool {
	for _, o := range p.Overrides {
		if score, ok := aspectScores[o.Aspect]; ok && score >= o.MinScore {
			return true
		}
	}
	return combined >= p.CombinedThreshold
}
