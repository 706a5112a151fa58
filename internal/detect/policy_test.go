package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catlens/internal/domain"
)

func TestPolicy_CombinedThresholdInclusive(t *testing.T) {
	p := Policy{CombinedThreshold: 0.85}

	assert.True(t, p.Accept(nil, 0.85))
	assert.True(t, p.Accept(nil, 0.86))
	assert.False(t, p.Accept(nil, 0.8499999))
}

func TestPolicy_OverrideFiresAlone(t *testing.T) {
	p := Policy{
		CombinedThreshold: 0.85,
		Overrides:         []AspectOverride{{Aspect: domain.AspectTitle, MinScore: 0.95}},
	}

	// Title alone is enough even when the blend falls short.
	scores := map[domain.Aspect]float64{
		domain.AspectTitle: 0.97,
		domain.AspectFull:  0.4,
	}
	assert.True(t, p.Accept(scores, 0.6))

	// Override bound is inclusive.
	scores[domain.AspectTitle] = 0.95
	assert.True(t, p.Accept(scores, 0.6))

	scores[domain.AspectTitle] = 0.94
	assert.False(t, p.Accept(scores, 0.6))
}

func TestPolicy_MissingOverrideAspectIgnored(t *testing.T) {
	p := Policy{
		CombinedThreshold: 0.85,
		Overrides:         []AspectOverride{{Aspect: domain.AspectTitle, MinScore: 0.95}},
	}

	scores := map[domain.Aspect]float64{domain.AspectFull: 0.9}
	assert.True(t, p.Accept(scores, 0.9))
	assert.False(t, p.Accept(scores, 0.5))
}
