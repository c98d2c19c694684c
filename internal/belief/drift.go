package belief

import "strings"

// Drift kinds, from mild to identity-changing.
const (
	DriftStrengthened = "strengthened"
	DriftWeakened     = "weakened"
	DriftContradicted = "contradicted"
	DriftNew          = "new"
	DriftEvolved      = "evolved"
)

// Drift is one detected change to a belief, from new evidence.
type Drift struct {
	Claim         string  `json:"claim"`
	Type          string  `json:"type"`
	OldConfidence float64 `json:"old_confidence"`
	NewConfidence float64 `json:"new_confidence"`
	Trigger       string  `json:"trigger"`
	Reasoning     string  `json:"reasoning,omitempty"`
	Significance  float64 `json:"significance"`
}

// Apply folds drifts at or above the significance threshold into the
// model and returns how many were applied. The model is not saved here.
func (m *Model) Apply(drifts []Drift, threshold float64, now string) int {
	applied := 0
	for _, d := range drifts {
		if d.Significance < threshold {
			continue
		}

		idx := -1
		for i := range m.Beliefs {
			if strings.EqualFold(strings.TrimSpace(m.Beliefs[i].Claim), strings.TrimSpace(d.Claim)) {
				idx = i
				break
			}
		}

		if idx < 0 {
			if d.Type != DriftNew {
				continue // drift against a claim we do not hold
			}
			m.Beliefs = append(m.Beliefs, Belief{
				Claim:         d.Claim,
				Confidence:    d.NewConfidence,
				Category:      "unknown",
				EvidenceFor:   []string{d.Trigger},
				FirstObserved: now,
				LastUpdated:   now,
				Status:        StatusActive,
			})
			applied++
			continue
		}

		b := &m.Beliefs[idx]
		b.LastUpdated = now
		switch d.Type {
		case DriftStrengthened:
			b.Confidence = min1(d.NewConfidence)
			b.EvidenceFor = append(b.EvidenceFor, d.Trigger)
		case DriftWeakened:
			b.Confidence = d.NewConfidence
			b.EvidenceAgainst = append(b.EvidenceAgainst, d.Trigger)
			if b.Confidence < 0.3 {
				b.Status = StatusWeakening
			}
		case DriftContradicted:
			b.Confidence = d.NewConfidence
			b.EvidenceAgainst = append(b.EvidenceAgainst, d.Trigger)
			b.Status = StatusWeakening
		case DriftEvolved:
			b.Claim = d.Claim
			b.Confidence = d.NewConfidence
			b.EvidenceFor = append(b.EvidenceFor, d.Trigger)
			if d.Significance > 0.6 {
				b.Status = StatusRevised
			} else {
				b.Status = StatusActive
			}
		default:
			continue
		}
		applied++
	}
	return applied
}

func min1(f float64) float64 {
	if f > 1 {
		return 1
	}
	return f
}
