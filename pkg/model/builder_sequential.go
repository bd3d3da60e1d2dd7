package model

type sequentialBuilder struct {
	direction Direction
}

func NewSequentialBuilder(direction Direction) ModelBuilder {
	return &sequentialBuilder{direction: direction}
}

func (builder *sequentialBuilder) Build(modelInput ModelInput) (*Model, error) {
	registry, err := NewRegistry(modelInput)
	if err != nil {
		return nil, err
	}
	return NewModel(modelInput, registry, builder.direction), nil
}
