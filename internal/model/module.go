// Package model defines the RequireJS domain types shared by the mapper, the
// optimizer and the client configuration builder.
package model

// Module describes one r.js optimizer module: an entry point plus the
// modules explicitly bundled into it (Include) or left out of it (Exclude).
// Include and Exclude reference other modules by name and may form cycles.
type Module struct {
	Name    string
	Include []string
	Exclude []string
}

// Shim is the RequireJS shim configuration for a non-AMD script.
type Shim struct {
	Deps    []string `json:"deps"`
	Exports string   `json:"exports,omitempty"`
}

// Copy returns a Shim that shares no backing storage with s.
func (s Shim) Copy() Shim {
	deps := make([]string, len(s.Deps))
	copy(deps, s.Deps)
	return Shim{Deps: deps, Exports: s.Exports}
}

// Formula is an asset produced from a namespace resource: a source file and
// the module path it is served under.
type Formula struct {
	Name   string `json:"name"`
	Input  string `json:"input"`
	Output string `json:"output"`
}
