package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diogo/intellimind/internal/models"
)

// LoadVoiceSettings reads the persisted voice settings and merges them over
// the defaults. A missing record yields the defaults with a nil error; an
// unreadable record yields the defaults together with the error.
func LoadVoiceSettings(ctx context.Context, store Store) (models.VoiceSettings, error) {
	settings := models.DefaultVoiceSettings()

	data, err := store.Get(ctx, models.VoiceSettingsKey)
	if errors.Is(err, ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}

	// Unmarshal over the defaults so absent fields keep their default values
	if err := json.Unmarshal(data, &settings); err != nil {
		return models.DefaultVoiceSettings(), fmt.Errorf("failed to parse voice settings: %w", err)
	}
	if settings.Lang == "" {
		settings.Lang = models.DefaultVoiceSettings().Lang
	}
	return settings, nil
}

// SaveVoiceSettings persists the full settings record
func SaveVoiceSettings(ctx context.Context, store Store, settings models.VoiceSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal voice settings: %w", err)
	}
	if err := store.Set(ctx, models.VoiceSettingsKey, data); err != nil {
		return fmt.Errorf("failed to save voice settings: %w", err)
	}
	return nil
}
