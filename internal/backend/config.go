package backend

import (
	"fmt"

	"saga/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	types := make([]BackendType, 0, len(appConfig.StoreBackends))
	for _, name := range appConfig.StoreBackends {
		bt := BackendType(name)
		if !bt.IsValid() {
			return Config{}, fmt.Errorf("invalid backend type in config: %s", name)
		}
		types = append(types, bt)
	}

	cfg := Config{
		Backends:                 types,
		SQLiteDBPath:             appConfig.SQLiteDBPath,
		DataDirectory:            appConfig.DataDir,
		SessionTTL:               appConfig.SessionTTL,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return fmt.Errorf("no store backends configured")
	}
	for _, bt := range c.Backends {
		if !bt.IsValid() {
			return fmt.Errorf("invalid backend type: %s", bt)
		}
		switch bt {
		case SQLiteBackend:
			if c.SQLiteDBPath == "" {
				return fmt.Errorf("SQLite database path is required for sqlite backend")
			}
		case FileBackend:
			if c.DataDirectory == "" {
				return fmt.Errorf("data directory is required for file backend")
			}
		case SheetsBackend:
			if c.GoogleSpreadsheetID == "" {
				return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
			}
			if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
				return fmt.Errorf("service account credentials are required for sheets backend")
			}
		case MemoryBackend:
			// SessionTTL falls back to the memory package default
		}
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, FileBackend, MemoryBackend, SheetsBackend}
}
