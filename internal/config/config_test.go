package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "googledrive" {
		t.Errorf("Provider = %q, want googledrive", cfg.Provider)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.PageSize != 200 {
		t.Errorf("PageSize = %d, want 200", cfg.PageSize)
	}
	if cfg.CallsPerSecond != 0 {
		t.Errorf("CallsPerSecond = %v, want 0", cfg.CallsPerSecond)
	}
	if cfg.PromoKeywords != nil {
		t.Errorf("PromoKeywords = %v, want nil (built-in defaults)", cfg.PromoKeywords)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DRIVESWEEP_PROVIDER", "s3")
	t.Setenv("S3_BUCKET", "course-dump")
	t.Setenv("DRIVESWEEP_CONCURRENCY", "8")
	t.Setenv("DRIVESWEEP_PROMO_KEYWORDS", "spam, ad ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "s3" || cfg.S3Bucket != "course-dump" {
		t.Errorf("provider/bucket = %q/%q", cfg.Provider, cfg.S3Bucket)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if len(cfg.PromoKeywords) != 2 || cfg.PromoKeywords[0] != "spam" || cfg.PromoKeywords[1] != "ad" {
		t.Errorf("PromoKeywords = %v, want [spam ad]", cfg.PromoKeywords)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DRIVESWEEP_CONCURRENCY", "0")
	if _, err := Load(); err == nil {
		t.Error("Load accepted concurrency 0")
	}
}

func TestLoadS3RequiresBucket(t *testing.T) {
	t.Setenv("DRIVESWEEP_PROVIDER", "s3")
	t.Setenv("S3_BUCKET", "")
	if _, err := Load(); err == nil {
		t.Error("Load accepted s3 provider without bucket")
	}
}
