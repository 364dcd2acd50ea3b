package model

import (
	"fmt"
	"math"
)

const leaf = -1

// Aggregation modes for combining tree outputs.
const (
	AggregateMean = "mean" // random forest
	AggregateSum  = "sum"  // gradient boosting
)

// Tree is one regression tree in flat array form: node i splits on
// Feature[i] <= Threshold[i], going to ChildrenLeft[i] or ChildrenRight[i].
// Leaves have ChildrenLeft[i] == -1 and carry Value[i].
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// TreeEnsemble is a regression tree ensemble.
type TreeEnsemble struct {
	Version      string  `json:"version"`
	NumFeatures  int     `json:"n_features"`
	Aggregation  string  `json:"aggregation"`
	BaseScore    float64 `json:"base_score"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []Tree  `json:"trees"`
}

// LoadTreeEnsemble reads and validates a tree ensemble export from path.
func LoadTreeEnsemble(path string) (*TreeEnsemble, error) {
	var m TreeEnsemble
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	if err := m.init(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// NewTreeEnsemble validates an in-memory ensemble.
func NewTreeEnsemble(numFeatures int, aggregation string, baseScore, learningRate float64, trees []Tree) (*TreeEnsemble, error) {
	m := &TreeEnsemble{
		NumFeatures:  numFeatures,
		Aggregation:  aggregation,
		BaseScore:    baseScore,
		LearningRate: learningRate,
		Trees:        trees,
	}
	if err := m.init(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *TreeEnsemble) init() error {
	if m.NumFeatures <= 0 {
		return fmt.Errorf("%w: n_features must be positive", ErrModelLoad)
	}
	switch m.Aggregation {
	case "":
		m.Aggregation = AggregateMean
	case AggregateMean, AggregateSum:
	default:
		return fmt.Errorf("%w: unknown aggregation %q", ErrModelLoad, m.Aggregation)
	}
	if m.Aggregation == AggregateSum && m.LearningRate == 0 {
		m.LearningRate = 1
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("%w: ensemble has no trees", ErrModelLoad)
	}
	for i := range m.Trees {
		if err := m.Trees[i].validate(m.NumFeatures); err != nil {
			return fmt.Errorf("%w: tree %d: %v", ErrModelLoad, i, err)
		}
	}
	return nil
}

func (t *Tree) validate(numFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf {
			if r != leaf {
				return fmt.Errorf("node %d has only a right child", i)
			}
			if math.IsNaN(t.Value[i]) || math.IsInf(t.Value[i], 0) {
				return fmt.Errorf("leaf %d has a non-finite value", i)
			}
			continue
		}
		// Children always come after their parent, so traversal terminates.
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d has children out of range (%d, %d)", i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= numFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, f, numFeatures)
		}
	}
	return nil
}

func (t *Tree) eval(features []float64) float64 {
	i := 0
	for t.ChildrenLeft[i] != leaf {
		if features[t.Feature[i]] <= t.Threshold[i] {
			i = t.ChildrenLeft[i]
		} else {
			i = t.ChildrenRight[i]
		}
	}
	return t.Value[i]
}

func (m *TreeEnsemble) Inputs() int {
	return m.NumFeatures
}

func (m *TreeEnsemble) Predict(features []float64) (float64, error) {
	if err := checkInputs(m, features); err != nil {
		return 0, err
	}

	var sum float64
	for i := range m.Trees {
		sum += m.Trees[i].eval(features)
	}

	if m.Aggregation == AggregateSum {
		return m.BaseScore + m.LearningRate*sum, nil
	}
	return m.BaseScore + sum/float64(len(m.Trees)), nil
}

func (m *TreeEnsemble) Info() Info {
	return Info{Kind: "tree_ensemble", Version: m.Version, Inputs: m.NumFeatures}
}
