package model

import "github.com/sourcegraph/conc/iter"

// parallelBuilder generates every constraint family on its own goroutine. Families only read
// the shared input and registry, and iter.Map keeps their segments in family order, so the
// result is identical to the sequential build.
type parallelBuilder struct {
	direction Direction
}

func NewParallelBuilder(direction Direction) ModelBuilder {
	return &parallelBuilder{direction: direction}
}

func (builder *parallelBuilder) Build(modelInput ModelInput) (*Model, error) {
	registry, err := NewRegistry(modelInput)
	if err != nil {
		return nil, err
	}
	return assembleModel(modelInput, registry, builder.direction, generateConcurrently), nil
}

func generateConcurrently(state constraintState) [][]Constraint {
	return iter.Map(constraintFamilies, func(family *constraintFamily) []Constraint {
		return family.generate(state)
	})
}
