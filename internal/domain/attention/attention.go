package attention

import (
	"math"
	"sort"
)

// epsilon guards the weight normalization against an all-zero
// prediction set.
const epsilon = 1e-8

// Contributor is one entity's ranked share of the aggregate forecast.
type Contributor struct {
	Entity        string  `json:"country"`
	Contribution  float64 `json:"contribution"`
	Percentage    float64 `json:"percentage"`
	RawPrediction float64 `json:"raw_prediction"`
	Weight        float64 `json:"attention_weight"`
}

// Explanation is the attention-weighted aggregate forecast with its
// per-entity breakdown.
type Explanation struct {
	PredictedDelta       float64       `json:"predicted_delta"`
	TotalAbsContribution float64       `json:"total_abs_contribution"`
	TopContributors      []Contributor `json:"top_contributors"`
	NumEntities          int           `json:"num_countries"`
}

// Weights converts per-entity predictions into normalized non-negative
// attention weights proportional to prediction magnitude. For any
// non-empty, non-all-zero prediction set the weights sum to 1; an
// all-zero set yields all-zero weights rather than NaN.
func Weights(predictions map[string]float64) map[string]float64 {
	var totalAbs float64
	for _, p := range predictions {
		totalAbs += math.Abs(p)
	}

	weights := make(map[string]float64, len(predictions))
	for entity, p := range predictions {
		weights[entity] = math.Abs(p) / (totalAbs + epsilon)
	}
	return weights
}

// Explain computes the weighted aggregate prediction and the ranked,
// truncated contribution breakdown. Entities with larger-magnitude
// predictions dominate both the forecast and the explanation.
func Explain(predictions map[string]float64, topK int) Explanation {
	weights := Weights(predictions)

	var weighted, totalAbs float64
	for entity, p := range predictions {
		weighted += p * weights[entity]
		totalAbs += math.Abs(p) * weights[entity]
	}

	contributors := make([]Contributor, 0, len(predictions))
	for entity, p := range predictions {
		c := Contributor{
			Entity:        entity,
			Contribution:  p * weights[entity],
			RawPrediction: p,
			Weight:        weights[entity],
		}
		if totalAbs > 0 {
			c.Percentage = math.Abs(c.Contribution) / totalAbs * 100
		}
		contributors = append(contributors, c)
	}

	sort.Slice(contributors, func(i, j int) bool {
		wi, wj := math.Abs(contributors[i].Weight), math.Abs(contributors[j].Weight)
		if wi != wj {
			return wi > wj
		}
		return contributors[i].Entity < contributors[j].Entity
	})
	if topK > 0 && len(contributors) > topK {
		contributors = contributors[:topK]
	}

	return Explanation{
		PredictedDelta:       weighted,
		TotalAbsContribution: totalAbs,
		TopContributors:      contributors,
		NumEntities:          len(predictions),
	}
}

// Direction maps a predicted delta onto the service contract's
// UP/DOWN/FLAT label.
func Direction(delta float64) string {
	switch {
	case delta > 0:
		return "UP"
	case delta < 0:
		return "DOWN"
	default:
		return "FLAT"
	}
}
