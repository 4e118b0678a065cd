package database

import "testing"

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", User: "bot", Password: "p w'd", Name: "proverbs"}
	want := `user=bot password='p w\'d' host=db port=5432 dbname=proverbs sslmode=disable`
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}

func TestConfigURL(t *testing.T) {
	cfg := Config{Host: "db", Port: "6543", User: "bot", Password: "s3cr/t", Name: "proverbs", SSLMode: "require"}
	want := "postgres://bot:s3cr%2Ft@db:6543/proverbs?sslmode=require"
	if got := cfg.URL(); got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}

func TestConfigValidate(t *testing.T) {
	if (Config{}).Enabled() {
		t.Fatal("empty config should be disabled")
	}
	bad := []Config{
		{},
		{Host: "db"},
		{Host: "db", Name: "x"},
		{Host: "db", Name: "x", User: "u", MaxConnections: -1},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
	if err := (Config{Host: "db", Name: "x", User: "u"}).Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}
}
