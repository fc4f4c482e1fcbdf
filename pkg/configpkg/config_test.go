package configpkg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	content := []byte("DB_SOURCE=postgresql://localhost/test\nTOKEN_SYMMETRIC_KEY=abc\nDISPATCH_INTERVAL=5s\n")
	if err := os.WriteFile(filepath.Join(dir, "app.env"), content, 0o600); err != nil {
		t.Fatalf("os.WriteFile() returned error: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load(%q) returned error: %v", dir, err)
	}

	want := Config{
		DBDriver:          "postgres",
		DBSource:          "postgresql://localhost/test",
		ServerAddress:     "0.0.0.0:8080",
		TokenType:         "paseto",
		TokenSymmetricKey: "abc",
		Environment:       "production",
		RecurringSchedule: "0 0 * * *",
		RecurringLockTTL:  30 * time.Minute,
		DispatchInterval:  5 * time.Second,
		DispatchBatchSize: 100,
		EventMaxAttempts:  10,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load(%q) returned unexpected difference (-want +got):\n%s", dir, diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(dir); err == nil {
		t.Errorf("Load(%q) returned nil error, want error", dir)
	}
}

func TestLoadRejectsWorkerSettings(t *testing.T) {
	testCases := []struct {
		name string
		env  string
	}{
		{name: "ZeroInterval", env: "DISPATCH_INTERVAL=0s\n"},
		{name: "NegativeInterval", env: "DISPATCH_INTERVAL=-1s\n"},
		{name: "ZeroBatchSize", env: "DISPATCH_BATCH_SIZE=0\n"},
		{name: "NegativeMaxAttempts", env: "EVENT_MAX_ATTEMPTS=-1\n"},
		{name: "ZeroLockTTL", env: "RECURRING_LOCK_TTL=0s\n"},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()

			content := []byte("DB_SOURCE=postgresql://localhost/test\n" + tc.env)
			if err := os.WriteFile(filepath.Join(dir, "app.env"), content, 0o600); err != nil {
				t.Fatalf("os.WriteFile() returned error: %v", err)
			}

			if _, err := Load(dir); err == nil {
				t.Errorf("Load(%q) with %q returned nil error, want error", dir, tc.env)
			}
		})
	}
}
