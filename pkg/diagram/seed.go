package diagram

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//go:embed seed/default.json
var defaultSeed []byte

// DefaultSeed returns the bundled starter diagram used when nothing has been
// persisted yet.
func DefaultSeed() Diagram {
	d, err := Unmarshal(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("diagram: bundled seed is invalid: %v", err))
	}
	return d
}

// ReadSeedFile reads a diagram in {"nodes": [...], "edges": [...]} form.
func ReadSeedFile(path string) (Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return Diagram{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a diagram from r.
func Read(r io.Reader) (Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Diagram{}, fmt.Errorf("decode: %w", err)
	}
	return d.normalized(), nil
}

// Unmarshal decodes a diagram from JSON bytes.
func Unmarshal(data []byte) (Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, err
	}
	return d.normalized(), nil
}

// Write encodes d as indented JSON.
func Write(d Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.normalized()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// normalized replaces nil collections with empty ones so a snapshot always
// encodes as arrays.
func (d Diagram) normalized() Diagram {
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	return d
}
