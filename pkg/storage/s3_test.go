package storage

import "testing"

func TestExportKey(t *testing.T) {
	got := ExportKey("c1", "e1")
	if got != "exports/c1/e1.json" {
		t.Errorf("ExportKey = %q, want %q", got, "exports/c1/e1.json")
	}
}

func TestPresignExpireDefault(t *testing.T) {
	s := &S3{cfg: S3Config{}}
	if got := s.PresignExpire().Minutes(); got != 15 {
		t.Errorf("PresignExpire = %v minutes, want 15", got)
	}
	s.cfg.PresignExpireMinutes = 60
	if got := s.PresignExpire().Minutes(); got != 60 {
		t.Errorf("PresignExpire = %v minutes, want 60", got)
	}
}
