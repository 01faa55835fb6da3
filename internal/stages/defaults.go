package stages

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/stages/contenttypes"
	"github.com/custodia-labs/deckmend/internal/stages/nvids"
	"github.com/custodia-labs/deckmend/internal/stages/relrefs"
	"github.com/custodia-labs/deckmend/internal/stages/reltargets"
)

// DefaultOrder is the order the built-in stages must run in. Each stage
// depends on the output of the one before it.
var DefaultOrder = []string{
	reltargets.Name,
	nvids.Name,
	contenttypes.Name,
	relrefs.Name,
}

// RegisterDefaults registers all built-in stages with the registry.
// Call this during application initialisation to enable standard stages.
func RegisterDefaults(r *Registry) {
	r.Register(reltargets.Name, buildRelTargets)
	r.Register(nvids.Name, buildNVIDs, "include_layouts", "max_id")
	r.Register(contenttypes.Name, buildContentTypes, "extra_defaults")
	r.Register(relrefs.Name, buildRelRefs)
}

// NewDefaultPipeline builds the four built-in stages in canonical order.
// cfg maps stage names to their settings; missing entries use defaults.
func NewDefaultPipeline(codec driven.PackageCodec, cfg map[string]map[string]any) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	p := NewPipeline(codec)
	for _, name := range DefaultOrder {
		stage, err := r.Build(name, cfg[name])
		if err != nil {
			return nil, fmt.Errorf("building stage %s: %w", name, err)
		}
		p.Add(stage)
	}
	return p, nil
}

func buildRelTargets(_ map[string]any) (driven.RepairStage, error) {
	return reltargets.New(), nil
}

// buildNVIDs creates the shape id stage from generic config.
// Supported config keys:
//   - include_layouts (bool): Also normalise layouts, masters and notes (default: false)
//   - max_id (int): Largest id the stage may assign (default: 4294967295)
func buildNVIDs(cfg map[string]any) (driven.RepairStage, error) {
	var opts []nvids.Option

	if cfg != nil {
		if include, ok := getBoolFromConfig(cfg, "include_layouts"); ok {
			opts = append(opts, nvids.WithLayouts(include))
		}
		if maxID := getIntFromConfig(cfg, "max_id"); maxID > 0 {
			if int64(maxID) > int64(^uint32(0)) {
				return nil, fmt.Errorf("max_id %d exceeds the shape id range", maxID)
			}
			opts = append(opts, nvids.WithMaxID(uint32(maxID)))
		}
	}

	return nvids.New(opts...), nil
}

// buildContentTypes creates the content-type stage from generic config.
// Supported config keys:
//   - extra_defaults ([]string): "ext=content/type" pairs declared as Defaults when needed
func buildContentTypes(cfg map[string]any) (driven.RepairStage, error) {
	var opts []contenttypes.Option

	for _, pair := range getStringsFromConfig(cfg, "extra_defaults") {
		ext, contentType, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(ext) == "" || strings.TrimSpace(contentType) == "" {
			return nil, fmt.Errorf("invalid extra_defaults entry %q, want ext=content/type", pair)
		}
		opts = append(opts, contenttypes.WithDefault(ext, contentType))
	}

	return contenttypes.New(opts...), nil
}

func buildRelRefs(_ map[string]any) (driven.RepairStage, error) {
	return relrefs.New(), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func getBoolFromConfig(cfg map[string]any, key string) (bool, bool) {
	v, ok := cfg[key].(bool)
	return v, ok
}

// getStringsFromConfig accepts []string or the []any TOML and JSON decode to.
func getStringsFromConfig(cfg map[string]any, key string) []string {
	switch v := cfg[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return strings.Split(v, ",")
	default:
		return nil
	}
}
