package backend

import (
	"fmt"

	"expensetracker/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		AuthTokenSecret: appConfig.AuthTokenSecret,
		AuthTokenTTL:    appConfig.AuthTokenTTL,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		SupabaseURL:         appConfig.SupabaseURL,
		SupabaseKey:         appConfig.SupabaseKey,
		SupabasePhotoBucket: appConfig.SupabasePhotoBucket,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend, MemoryBackend:
		if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		if c.AuthTokenSecret == "" {
			return fmt.Errorf("auth token secret is required for %s backend", c.Type)
		}
		if c.AuthTokenTTL <= 0 {
			return fmt.Errorf("auth token TTL must be positive for %s backend", c.Type)
		}

	case SupabaseBackend:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("Supabase URL and key are required for supabase backend")
		}
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, SupabaseBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
