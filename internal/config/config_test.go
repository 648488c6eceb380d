package config

import (
	"reflect"
	"testing"
	"time"
)

func TestParseList(t *testing.T) {
	got := parseList(" http://localhost:5173 , ,https://example.org")
	want := []string{"http://localhost:5173", "https://example.org"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseList = %v, want %v", got, want)
	}
	if parseList("") != nil {
		t.Error("empty input should yield nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RESULT_STORE", "SQLite")
	t.Setenv("RESULT_HISTORY_LIMIT", "5")
	t.Setenv("CHAT_TEMPERATURE", "0.2")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.ResultStore != ResultStoreSQLite {
		t.Errorf("ResultStore = %q", cfg.ResultStore)
	}
	if cfg.HistoryLimit != 5 {
		t.Errorf("HistoryLimit = %d", cfg.HistoryLimit)
	}
	if cfg.ChatTemperature != 0.2 {
		t.Errorf("ChatTemperature = %v", cfg.ChatTemperature)
	}
	if cfg.ProviderTimeout != 30*time.Second {
		t.Errorf("ProviderTimeout = %v, want fallback 30s", cfg.ProviderTimeout)
	}
}

func TestCacheKeys(t *testing.T) {
	if got := CacheKey.LearnerResultsKey("ana"); got != "learner:ana:results" {
		t.Errorf("LearnerResultsKey = %q", got)
	}
	if got := CacheKey.SessionSnapshotKey("s1"); got != "session:s1:snapshot" {
		t.Errorf("SessionSnapshotKey = %q", got)
	}
}
