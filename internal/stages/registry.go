package stages

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
)

// BuilderFunc creates a RepairStage from generic config.
// Config is a map of stage-specific settings parsed from user config.
type BuilderFunc func(cfg map[string]any) (driven.RepairStage, error)

type registration struct {
	build BuilderFunc
	keys  map[string]bool
}

// Registry maps stage names to their builders and the config keys each
// builder understands.
type Registry struct {
	stages map[string]registration
}

// NewRegistry creates a new stage registry.
func NewRegistry() *Registry {
	return &Registry{
		stages: make(map[string]registration),
	}
}

// Register adds a stage builder together with the config keys it accepts.
// A stage registered without keys takes no configuration.
func (r *Registry) Register(name string, builder BuilderFunc, keys ...string) {
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	r.stages[name] = registration{build: builder, keys: allowed}
}

// Build creates a stage by name with the given config.
// Unknown names, config keys the stage does not accept, and a built stage
// reporting a different name are all rejected with ErrInvalidInput.
func (r *Registry) Build(name string, cfg map[string]any) (driven.RepairStage, error) {
	reg, ok := r.stages[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown stage: %s", domain.ErrInvalidInput, name)
	}

	var unknown []string
	for k := range cfg {
		if !reg.keys[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: stage %s does not accept config keys: %s",
			domain.ErrInvalidInput, name, strings.Join(unknown, ", "))
	}

	stage, err := reg.build(cfg)
	if err != nil {
		return nil, err
	}
	if stage.Name() != name {
		return nil, fmt.Errorf("%w: stage registered as %s reports name %s",
			domain.ErrInvalidInput, name, stage.Name())
	}
	return stage, nil
}

// Keys returns the config keys accepted by the named stage, sorted.
func (r *Registry) Keys(name string) []string {
	reg, ok := r.stages[name]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(reg.keys))
	for k := range reg.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has returns true if a stage with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.stages[name]
	return ok
}

// Names returns all registered stage names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stages))
	for name := range r.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
