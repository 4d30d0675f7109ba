package questionnaire

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"portfolio-advisor/internal/domain"
)

// Answers maps a question id to the option codes the investor selected.
type Answers map[string][]string

// UnmarshalJSON accepts each answer either as an array of codes or, for
// single-choice questions, as a bare code string.
func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("answers must be an object keyed by question id: %w", err)
	}
	if raw == nil {
		*a = nil
		return nil
	}
	out := make(Answers, len(raw))
	for id, value := range raw {
		var codes []string
		if err := json.Unmarshal(value, &codes); err == nil {
			out[id] = codes
			continue
		}
		var code string
		if err := json.Unmarshal(value, &code); err != nil {
			return fmt.Errorf("answer %q must be a code string or an array of codes", id)
		}
		out[id] = []string{code}
	}
	*a = out
	return nil
}

// Normalize trims and lower-cases ids and codes, dropping blanks and duplicates.
func (a Answers) Normalize() Answers {
	out := make(Answers, len(a))
	for rawID, rawCodes := range a {
		id := strings.ToLower(strings.TrimSpace(rawID))
		if id == "" {
			continue
		}
		seen := make(map[string]struct{}, len(rawCodes))
		codes := out[id]
		for _, raw := range rawCodes {
			code := strings.ToLower(strings.TrimSpace(raw))
			if code == "" {
				continue
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
		if len(codes) > 0 {
			out[id] = codes
		}
	}
	return out
}

// BuildProfile validates the answers against the catalog and maps them to an
// investor profile. All problems are reported together in a ValidationError.
func BuildProfile(answers Answers) (domain.InvestorProfile, error) {
	normalized := answers.Normalize()

	var problems []string

	unknown := make([]string, 0)
	for id := range normalized {
		if _, ok := Lookup(id); !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		problems = append(problems, fmt.Sprintf("unknown question: %s", id))
	}

	var missing []string
	for _, q := range catalog {
		codes := normalized[q.ID]
		if len(codes) == 0 {
			if q.Required {
				missing = append(missing, q.ID)
			}
			continue
		}
		if q.Kind == KindSingle && len(codes) > 1 {
			problems = append(problems, fmt.Sprintf("question %s accepts a single answer, got %d", q.ID, len(codes)))
		}
		for _, code := range codes {
			if _, ok := q.option(code); !ok {
				problems = append(problems, fmt.Sprintf("unknown answer %q for question %s", code, q.ID))
			}
		}
	}
	if len(missing) > 0 {
		problems = append(problems, "missing answers: "+strings.Join(missing, ", "))
	}
	if len(problems) > 0 {
		return domain.InvestorProfile{}, domain.NewValidationError(problems...)
	}

	sums := make(map[Dimension]float64)
	weights := make(map[Dimension]float64)
	profile := domain.InvestorProfile{
		CashPreference: domain.CashPreferenceMedium,
		Goals:          []string{},
		Interests:      []string{},
	}

	for _, q := range catalog {
		codes := normalized[q.ID]
		switch q.Dimension {
		case DimensionCashPreference:
			if len(codes) == 1 {
				profile.CashPreference = domain.CashPreference(codes[0])
			}
			continue
		case DimensionGoals:
			profile.Goals = sortedSet(codes)
			continue
		case DimensionInterests:
			profile.Interests = sortedSet(codes)
			continue
		}

		points := 0.0
		for _, code := range codes {
			opt, _ := q.option(code)
			points += opt.Points
		}
		sums[q.Dimension] += q.Weight * math.Min(points, 100)
		weights[q.Dimension] += q.Weight
	}

	profile.RiskTolerance = dimensionScore(sums, weights, DimensionRiskTolerance)
	profile.RiskCapacity = dimensionScore(sums, weights, DimensionRiskCapacity)
	profile.TimeHorizon = dimensionScore(sums, weights, DimensionTimeHorizon)
	profile.Experience = dimensionScore(sums, weights, DimensionExperience)

	return profile, nil
}

func dimensionScore(sums, weights map[Dimension]float64, dim Dimension) float64 {
	w := weights[dim]
	if w <= 0 {
		return 0
	}
	score := sums[dim] / w
	score = math.Max(0, math.Min(100, score))
	return math.Round(score*10) / 10
}

func sortedSet(codes []string) []string {
	out := make([]string, len(codes))
	copy(out, codes)
	sort.Strings(out)
	return out
}
