package config

import "testing"

func TestGettersFallBackToDefaults(t *testing.T) {
	c := map[string]string{
		"PORT":      "9090",
		"BAD_INT":   "nine",
		"RATE":      "32.5",
		"MIGRATE":   "false",
		"EMPTY":     "",
		"ORIGINS":   "https://a.example, ,https://b.example",
		"BAD_FLOAT": "x",
	}

	if got := GetInt(c, "PORT", 8080); got != 9090 {
		t.Fatalf("GetInt(PORT) = %d, want 9090", got)
	}
	if got := GetInt(c, "BAD_INT", 7); got != 7 {
		t.Fatalf("GetInt(BAD_INT) = %d, want default 7", got)
	}
	if got := GetFloat(c, "RATE", 1); got != 32.5 {
		t.Fatalf("GetFloat(RATE) = %v, want 32.5", got)
	}
	if got := GetFloat(c, "BAD_FLOAT", 25); got != 25 {
		t.Fatalf("GetFloat(BAD_FLOAT) = %v, want default 25", got)
	}
	if got := GetBool(c, "MIGRATE", true); got {
		t.Fatalf("GetBool(MIGRATE) = true, want false")
	}
	if got := GetString(c, "EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("GetString(EMPTY) = %q, want fallback", got)
	}
	if got := GetString(nil, "PORT", "8080"); got != "8080" {
		t.Fatalf("GetString(nil) = %q, want 8080", got)
	}

	origins := GetList(c, "ORIGINS")
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("GetList(ORIGINS) = %v", origins)
	}
	if GetList(c, "MISSING") != nil {
		t.Fatalf("GetList(MISSING) should be nil")
	}
}

func TestSplitKeepsEqualsInValue(t *testing.T) {
	key, value := split("DATABASE_URL=postgres://u:p@h/db?sslmode=require&x=y")
	if key != "DATABASE_URL" {
		t.Fatalf("key = %q", key)
	}
	if value != "postgres://u:p@h/db?sslmode=require&x=y" {
		t.Fatalf("value = %q", value)
	}
}
