// Package experiments holds the named, parameterized experiments available
// to the CLI and the server. Each experiment knows how to turn a decoded
// parameter set into a simulation recipe and exposes named probes for
// reading results out of a built simulation.
package experiments

import (
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/daniacca/entropia/pkg/sim"
)

// Experiment is one registered experiment definition.
type Experiment struct {
	Name        string
	Description string

	// NewParams returns a fresh parameter struct pointer carrying the
	// experiment's defaults. YAML parameter files decode into it.
	NewParams func() any

	// Recipe builds the simulation recipe for the given decoded parameters.
	Recipe func(params any) (*sim.Builder, error)

	// Probes are the named observations the experiment exposes.
	Probes map[string]sim.Probe[float64]
}

// DecodeParams produces the experiment's parameters from YAML data, starting
// from the defaults. Empty data yields the defaults unchanged.
func (e *Experiment) DecodeParams(data []byte) (any, error) {
	params := e.NewParams()
	if len(data) == 0 {
		return params, nil
	}
	if err := yaml.Unmarshal(data, params); err != nil {
		return nil, fmt.Errorf("experiment %s: decoding params: %w", e.Name, err)
	}
	return params, nil
}

// ProbeNames returns the experiment's probe names in sorted order.
func (e *Experiment) ProbeNames() []string {
	names := make([]string, 0, len(e.Probes))
	for name := range e.Probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry is a named collection of experiments, safe for concurrent reads.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Experiment
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Experiment)}
}

// Register adds an experiment to the registry.
// Registering an empty or duplicate name fails.
func (r *Registry) Register(e *Experiment) error {
	if e == nil || e.Name == "" {
		return fmt.Errorf("experiment name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[e.Name]; exists {
		return fmt.Errorf("experiment %s already registered", e.Name)
	}
	r.byName[e.Name] = e
	return nil
}

// Get retrieves an experiment by name.
func (r *Registry) Get(name string) (*Experiment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return e, ok
}

// List returns all registered experiments sorted by name.
func (r *Registry) List() []*Experiment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Experiment, 0, len(r.byName))
	for _, e := range r.byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BuiltIn returns a registry holding the built-in experiments.
func BuiltIn() *Registry {
	r := NewRegistry()
	for _, e := range []*Experiment{
		coinTossExperiment(),
		forestFireExperiment(),
		epidemicExperiment(),
	} {
		if err := r.Register(e); err != nil {
			// built-in names are static; a clash is a programming error
			panic(err)
		}
	}
	return r
}
