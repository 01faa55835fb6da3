package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyCheckIdempotency = "repair.check_idempotency"
	keyOutputSuffix     = "repair.output_suffix"
	keyConcurrency      = "repair.concurrency"
	keyHistory          = "repair.history"
	keyIncludeLayouts   = "stages.nv-ids.include_layouts"
	keyExtraDefaults    = "stages.content-types.extra_defaults"
)

var settingKeys = []string{
	keyCheckIdempotency,
	keyOutputSuffix,
	keyConcurrency,
	keyHistory,
	keyIncludeLayouts,
	keyExtraDefaults,
}

// SettingsService manages repair settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current repair settings.
func (s *SettingsService) Get() (*domain.RepairSettings, error) {
	defaults := domain.DefaultRepairSettings()

	settings := &domain.RepairSettings{
		CheckIdempotency: s.getBool(keyCheckIdempotency, defaults.CheckIdempotency),
		OutputSuffix:     s.getString(keyOutputSuffix, defaults.OutputSuffix),
		Concurrency:      s.getInt(keyConcurrency, defaults.Concurrency),
		History:          s.getBool(keyHistory, defaults.History),
		IncludeLayouts:   s.getBool(keyIncludeLayouts, defaults.IncludeLayouts),
		ExtraDefaults:    s.configStore.GetStringSlice(keyExtraDefaults),
	}
	if settings.Concurrency < 1 {
		settings.Concurrency = defaults.Concurrency
	}

	return settings, nil
}

// Save persists repair settings.
func (s *SettingsService) Save(settings *domain.RepairSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}
	if err := validateSuffix(settings.OutputSuffix); err != nil {
		return err
	}
	if settings.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", domain.ErrInvalidInput)
	}
	if err := validateExtraDefaults(settings.ExtraDefaults); err != nil {
		return err
	}

	if err := s.configStore.Set(keyCheckIdempotency, settings.CheckIdempotency); err != nil {
		return fmt.Errorf("save check_idempotency: %w", err)
	}
	if err := s.configStore.Set(keyOutputSuffix, settings.OutputSuffix); err != nil {
		return fmt.Errorf("save output_suffix: %w", err)
	}
	if err := s.configStore.Set(keyConcurrency, settings.Concurrency); err != nil {
		return fmt.Errorf("save concurrency: %w", err)
	}
	if err := s.configStore.Set(keyHistory, settings.History); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if err := s.configStore.Set(keyIncludeLayouts, settings.IncludeLayouts); err != nil {
		return fmt.Errorf("save include_layouts: %w", err)
	}
	extra := settings.ExtraDefaults
	if extra == nil {
		extra = []string{}
	}
	if err := s.configStore.Set(keyExtraDefaults, extra); err != nil {
		return fmt.Errorf("save extra_defaults: %w", err)
	}

	return nil
}

// Set updates one setting from its string form, as typed on a command line.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch key {
	case keyCheckIdempotency:
		settings.CheckIdempotency, err = parseBool(key, value)
	case keyHistory:
		settings.History, err = parseBool(key, value)
	case keyIncludeLayouts:
		settings.IncludeLayouts, err = parseBool(key, value)
	case keyOutputSuffix:
		settings.OutputSuffix = value
	case keyConcurrency:
		settings.Concurrency, err = strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			err = fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
	case keyExtraDefaults:
		settings.ExtraDefaults = splitList(value)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return err
	}

	return s.Save(settings)
}

// Keys returns the configuration keys Set accepts.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.RepairSettings {
	return domain.DefaultRepairSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func validateSuffix(suffix string) error {
	if suffix == "" {
		return fmt.Errorf("%w: output suffix must not be empty", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(suffix, `/\`) {
		return fmt.Errorf("%w: output suffix %q must not contain a path separator", domain.ErrInvalidInput, suffix)
	}
	return nil
}

func validateExtraDefaults(pairs []string) error {
	for _, pair := range pairs {
		ext, contentType, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(ext) == "" || strings.TrimSpace(contentType) == "" {
			return fmt.Errorf("%w: extra default %q, want ext=content/type", domain.ErrInvalidInput, pair)
		}
	}
	return nil
}
