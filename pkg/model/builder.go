package model

// ModelBuilder turns a validated input into a model ready for a solver adapter
type ModelBuilder interface {
	Build(modelInput ModelInput) (*Model, error)
}
