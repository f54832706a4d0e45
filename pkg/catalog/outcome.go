package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// WeightedOutcome is one branch of a probabilistic option.
type WeightedOutcome struct {
	Probability float64 `yaml:"probability" json:"probability"`
	Result      Result  `yaml:"result" json:"result"`
}

// Outcome is the result of choosing an option. It is either a single
// deterministic Result or an ordered list of weighted branches.
type Outcome struct {
	Result   *Result
	Weighted []WeightedOutcome
}

func (o Outcome) IsWeighted() bool {
	return len(o.Weighted) > 0
}

// TotalProbability sums the branch probabilities.
func (o Outcome) TotalProbability() float64 {
	var total float64
	for _, w := range o.Weighted {
		total += w.Probability
	}
	return total
}

func (o Outcome) Clone() Outcome {
	var out Outcome
	if o.Result != nil {
		r := o.Result.Clone()
		out.Result = &r
	}
	if o.Weighted != nil {
		out.Weighted = make([]WeightedOutcome, len(o.Weighted))
		for i, w := range o.Weighted {
			out.Weighted[i] = WeightedOutcome{Probability: w.Probability, Result: w.Result.Clone()}
		}
	}
	return out
}

// UnmarshalYAML accepts either a result mapping or a list of weighted outcomes.
func (o *Outcome) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var weighted []WeightedOutcome
		if err := value.Decode(&weighted); err != nil {
			return err
		}
		o.Weighted = weighted
		o.Result = nil
		return nil
	case yaml.MappingNode:
		var r Result
		if err := value.Decode(&r); err != nil {
			return err
		}
		o.Result = &r
		o.Weighted = nil
		return nil
	default:
		return fmt.Errorf("line %d: outcome must be a mapping or a list", value.Line)
	}
}

// UnmarshalJSON accepts either a result object or an array of weighted outcomes.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var weighted []WeightedOutcome
		if err := json.Unmarshal(trimmed, &weighted); err != nil {
			return err
		}
		o.Weighted = weighted
		o.Result = nil
		return nil
	}
	var r Result
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return err
	}
	o.Result = &r
	o.Weighted = nil
	return nil
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.IsWeighted() {
		return json.Marshal(o.Weighted)
	}
	if o.Result == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o.Result)
}
