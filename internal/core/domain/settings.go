package domain

const unknownDescription = "Unknown"

// Default repair settings.
const (
	DefaultOutputSuffix = ".repaired"
	DefaultConcurrency  = 4
)

// OutputFormat selects how results are rendered by driving adapters.
type OutputFormat string

// Available output formats.
const (
	// OutputFormatText renders a human-readable summary.
	OutputFormatText OutputFormat = "text"

	// OutputFormatJSON renders indented JSON.
	OutputFormatJSON OutputFormat = "json"

	// OutputFormatYAML renders YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// IsValid returns true if the output format is recognised.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f OutputFormat) String() string {
	return string(f)
}

// Description returns a human-readable description of the format.
func (f OutputFormat) Description() string {
	switch f {
	case OutputFormatText:
		return "Text (human-readable summary)"
	case OutputFormatJSON:
		return "JSON"
	case OutputFormatYAML:
		return "YAML"
	default:
		return unknownDescription
	}
}

// RepairSettings holds repair behaviour configuration.
type RepairSettings struct {
	// CheckIdempotency re-runs the pipeline on its own output.
	CheckIdempotency bool

	// OutputSuffix is inserted before the extension of repaired files.
	OutputSuffix string

	// Concurrency bounds how many files a batch repairs at once.
	Concurrency int

	// History persists a report for every repair.
	History bool

	// IncludeLayouts extends id normalisation to layouts, masters and notes.
	IncludeLayouts bool

	// ExtraDefaults are additional "ext=content/type" Default declarations
	// the content-type stage may add.
	ExtraDefaults []string
}

// DefaultRepairSettings returns sensible defaults.
func DefaultRepairSettings() RepairSettings {
	return RepairSettings{
		CheckIdempotency: false,
		OutputSuffix:     DefaultOutputSuffix,
		Concurrency:      DefaultConcurrency,
		History:          true,
		IncludeLayouts:   true,
	}
}

// StageConfig returns per-stage builder configuration derived from the settings.
func (s RepairSettings) StageConfig() map[string]map[string]any {
	extra := make([]any, 0, len(s.ExtraDefaults))
	for _, d := range s.ExtraDefaults {
		extra = append(extra, d)
	}
	return map[string]map[string]any{
		"nv-ids":        {"include_layouts": s.IncludeLayouts},
		"content-types": {"extra_defaults": extra},
	}
}
