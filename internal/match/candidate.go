package match

import (
	"sort"

	"mapper-engine/internal/schema"
)

// Candidate is an input field ranked as a binding for an output field.
type Candidate struct {
	Input  schema.FlatField
	Output schema.FlatField

	// NameScore is the name similarity (0-1).
	NameScore float64
	// Compat is the fit of the input's returned types to the output's
	// accepted types.
	Compat Compatibility

	// CombinedScore orders the candidates, higher is better.
	CombinedScore float64
}

// CandidateList is a ranked list of candidates.
type CandidateList []Candidate

// RankCandidates scores every input field that can be dropped on output
// and sorts them by combined score, then by path.
func RankCandidates(output schema.FlatField, inputs schema.FlatList) CandidateList {
	var candidates CandidateList

	for _, input := range inputs {
		compat := Score(input.Type.TypesReturned, output.Type.TypesAccepted)
		if !compat.Droppable() {
			continue
		}

		nameScore := NameSimilarity(input.Name, output.Name)

		candidates = append(candidates, Candidate{
			Input:         input,
			Output:        output,
			NameScore:     nameScore,
			Compat:        compat,
			CombinedScore: combinedScore(nameScore, compat),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// combinedScore weighs name similarity at 60% and type fit at 40%.
func combinedScore(nameScore float64, compat Compatibility) float64 {
	const (
		nameWeight = 0.6
		typeWeight = 0.4
	)

	return nameScore*nameWeight + compat.Score()*typeWeight
}

func (c CandidateList) Len() int { return len(c) }

func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

func (c CandidateList) Less(i, j int) bool {
	if c[i].CombinedScore != c[j].CombinedScore {
		return c[i].CombinedScore > c[j].CombinedScore
	}

	return c[i].Input.Key() < c[j].Input.Key()
}

// Top returns the first n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].CombinedScore-c[1].CombinedScore < threshold
}

// HighConfidence returns the best candidate when it scores at least
// minScore and leads the runner-up by minGap.
func (c CandidateList) HighConfidence(minScore, minGap float64) *Candidate {
	best := c.Best()
	if best == nil || best.CombinedScore < minScore {
		return nil
	}

	if len(c) > 1 && c[0].CombinedScore-c[1].CombinedScore < minGap {
		return nil
	}

	return best
}

// Confidence thresholds for suggestions.
const (
	DefaultMinScore           = 0.7
	DefaultMinGap             = 0.15
	DefaultAmbiguityThreshold = 0.1
)
