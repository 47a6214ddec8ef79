package secret_test

import (
	"testing"

	"sitepages/internal/secret"
)

func TestEnvStore_ReadsEnvironment(t *testing.T) {
	t.Setenv("SITEPAGES_SECRET_NEWS_DB", "hunter2")
	s := secret.NewEnvStore("")

	v, err := s.Get("news-db")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "hunter2" {
		t.Errorf("expected hunter2, got %q", v)
	}
}

func TestEnvStore_MissingIsEmpty(t *testing.T) {
	s := secret.NewEnvStore("TEST_")
	v, err := s.Get("absent")
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 0 {
		t.Errorf("expected empty value, got %q", v)
	}
}

func TestEnvStore_SetShadowsEnvironment(t *testing.T) {
	t.Setenv("APP_TOKEN", "from-env")
	s := secret.NewEnvStore("APP_")

	if err := s.Set("token", []byte("runtime")); err != nil {
		t.Fatal(err)
	}
	v, _ := s.Get("token")
	if string(v) != "runtime" {
		t.Errorf("expected runtime value, got %q", v)
	}

	s.Delete("token")
	v, _ = s.Get("token")
	if string(v) != "from-env" {
		t.Errorf("expected env value after delete, got %q", v)
	}
}
