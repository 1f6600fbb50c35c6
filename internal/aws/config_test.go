package aws

import (
	"os"
	"path/filepath"
	"testing"
)

// useSharedConfig points the SDK at a temporary config and credentials pair
// that defines test-profile in us-west-2.
func useSharedConfig(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	dir := t.TempDir()

	files := map[string]string{
		"config":      "[profile test-profile]\nregion = us-west-2\n",
		"credentials": "[test-profile]\naws_access_key_id = test\naws_secret_access_key = test\n",
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
}

func TestLoadAWSConfigWithRegionOverride(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	cfg, err := LoadAWSConfig("", "us-east-1")
	if err != nil {
		t.Fatalf("LoadAWSConfig() error = %v", err)
	}
	if cfg.Region != "us-east-1" {
		t.Fatalf("expected region us-east-1, got %q", cfg.Region)
	}
}

func TestLoadAWSConfigWithProfile(t *testing.T) {
	useSharedConfig(t)

	cfg, err := LoadAWSConfig("test-profile", "")
	if err != nil {
		t.Fatalf("LoadAWSConfig() error = %v", err)
	}
	if cfg.Region != "us-west-2" {
		t.Fatalf("expected region us-west-2, got %q", cfg.Region)
	}
}

func TestLoadAWSConfigMissingProfileReturnsError(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing-config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "missing-credentials"))

	_, err := LoadAWSConfig("does-not-exist", "")
	if err == nil {
		t.Fatal("expected error for missing profile")
	}
}

func TestLoadAWSConfigRegionOverridesProfileAndSetsAppID(t *testing.T) {
	useSharedConfig(t)

	cfg, err := LoadAWSConfig("test-profile", "eu-west-1")
	if err != nil {
		t.Fatalf("LoadAWSConfig() error = %v", err)
	}
	if cfg.Region != "eu-west-1" {
		t.Fatalf("expected region eu-west-1, got %q", cfg.Region)
	}
	if cfg.AppID != AppID {
		t.Fatalf("expected app id %q, got %q", AppID, cfg.AppID)
	}
}
