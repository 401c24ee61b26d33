package render

import (
	"encoding/json"
	"io"
)

type Renderer[T any] interface {
	Render(result T) error
}

// JSONRenderer writes results as indented JSON for --json output
type JSONRenderer[T any] struct {
	out io.Writer
}

// NewJSONRenderer creates a new JSON renderer
func NewJSONRenderer[T any](out io.Writer) *JSONRenderer[T] {
	return &JSONRenderer[T]{out: out}
}

func (r *JSONRenderer[T]) Render(result T) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
