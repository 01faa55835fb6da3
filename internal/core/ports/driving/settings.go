package driving

import "github.com/custodia-labs/deckmend/internal/core/domain"

// SettingsService manages repair settings.
type SettingsService interface {
	// Get retrieves current repair settings.
	Get() (*domain.RepairSettings, error)

	// Save persists repair settings.
	Save(settings *domain.RepairSettings) error

	// Set updates one setting by its configuration key.
	Set(key, value string) error

	// Keys returns the configuration keys Set accepts.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.RepairSettings
}
