package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"expensetracker/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:     "sqlite",
		SQLiteDBPath:    "/tmp/x.db",
		AuthTokenSecret: "s",
		AuthTokenTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory ok", Config{Type: MemoryBackend, AuthTokenSecret: "s", AuthTokenTTL: time.Hour}, false},
		{"memory without secret", Config{Type: MemoryBackend, AuthTokenTTL: time.Hour}, true},
		{"sqlite without path", Config{Type: SQLiteBackend, AuthTokenSecret: "s", AuthTokenTTL: time.Hour}, true},
		{"supabase ok", Config{Type: SupabaseBackend, SupabaseURL: "https://x", SupabaseKey: "k"}, false},
		{"supabase without key", Config{Type: SupabaseBackend, SupabaseURL: "https://x"}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultFactory_CreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, AuthTokenSecret: "secret", AuthTokenTTL: time.Hour})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		if res.Backend == nil || res.Photos == nil || res.Publisher != nil {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{
			Type:            SQLiteBackend,
			SQLiteDBPath:    filepath.Join(t.TempDir(), "f.db"),
			AuthTokenSecret: "secret",
			AuthTokenTTL:    time.Hour,
		})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		if res.Photos == nil || res.Cleanup == nil {
			t.Errorf("sqlite backend should serve photos and need cleanup")
		}
		if res.Ready == nil {
			t.Fatal("sqlite backend should expose a readiness probe")
		}
		if err := res.Ready(ctx); err != nil {
			t.Errorf("Ready() error = %v", err)
		}
		if err := res.Cleanup(); err != nil {
			t.Errorf("Cleanup() error = %v", err)
		}
	})

	t.Run("supabase", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: SupabaseBackend, SupabaseURL: "https://x.supabase.co", SupabaseKey: "anon"})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		if res.Photos != nil {
			t.Error("supabase photos are served by the storage CDN")
		}
	})
}
