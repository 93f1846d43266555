package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// TestConfig represents a test configuration structure.
type TestConfig struct {
	Config string `help:"Config file path"`

	// Basic types
	StringField string   `toml:"test.string_field" env:"STRING_FIELD"`
	BoolField   bool     `toml:"test.bool_field" env:"BOOL_FIELD"`
	IntField    int      `toml:"test.int_field" env:"INT_FIELD"`
	SliceField  []string `toml:"test.slice_field" env:"SLICE_FIELD"`

	// Durations
	GraceField   time.Duration `toml:"test.grace" env:"GRACE"`
	SecondsField time.Duration `toml:"test.seconds" env:"SECONDS"`

	// Nested config
	NestedString string `toml:"nested.value" env:"NESTED_VALUE"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vhsnode.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfig(t, `
[test]
string_field = "hello world"
bool_field = true
int_field = 42
slice_field = ["item1", "item2", "item3"]
grace = "1500ms"
seconds = 30

[nested]
value = "nested value"
`)

	config := &TestConfig{Config: path}
	if err := LoadConfig(config, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.StringField != "hello world" {
		t.Errorf("StringField = %q, want %q", config.StringField, "hello world")
	}
	if !config.BoolField {
		t.Errorf("BoolField = %v, want true", config.BoolField)
	}
	if config.IntField != 42 {
		t.Errorf("IntField = %d, want 42", config.IntField)
	}
	if want := []string{"item1", "item2", "item3"}; !reflect.DeepEqual(config.SliceField, want) {
		t.Errorf("SliceField = %v, want %v", config.SliceField, want)
	}
	if config.GraceField != 1500*time.Millisecond {
		t.Errorf("GraceField = %v, want 1.5s", config.GraceField)
	}
	if config.SecondsField != 30*time.Second {
		t.Errorf("SecondsField = %v, want 30s", config.SecondsField)
	}
	if config.NestedString != "nested value" {
		t.Errorf("NestedString = %q, want %q", config.NestedString, "nested value")
	}
}

func TestLoadConfigFromEnvVars(t *testing.T) {
	t.Setenv("VHS_STRING_FIELD", "env string")
	t.Setenv("VHS_BOOL_FIELD", "false")
	t.Setenv("VHS_INT_FIELD", "123")
	t.Setenv("VHS_SLICE_FIELD", "a,b,c")
	t.Setenv("VHS_GRACE", "2s")
	t.Setenv("VHS_NESTED_VALUE", "env nested")

	config := &TestConfig{BoolField: true}
	if err := LoadConfig(config, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.StringField != "env string" {
		t.Errorf("StringField = %q", config.StringField)
	}
	if config.BoolField {
		t.Errorf("BoolField = %v, want false", config.BoolField)
	}
	if config.IntField != 123 {
		t.Errorf("IntField = %d, want 123", config.IntField)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(config.SliceField, want) {
		t.Errorf("SliceField = %v, want %v", config.SliceField, want)
	}
	if config.GraceField != 2*time.Second {
		t.Errorf("GraceField = %v, want 2s", config.GraceField)
	}
	if config.NestedString != "env nested" {
		t.Errorf("NestedString = %q", config.NestedString)
	}
}

func TestLoadConfigEnvOverridesToml(t *testing.T) {
	path := writeConfig(t, `
[test]
string_field = "toml value"
bool_field = true
int_field = 100
slice_field = ["toml1", "toml2"]
`)
	t.Setenv("VHS_STRING_FIELD", "env override")
	t.Setenv("VHS_BOOL_FIELD", "false")

	config := &TestConfig{Config: path}
	if err := LoadConfig(config, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.StringField != "env override" {
		t.Errorf("StringField = %q, want env override", config.StringField)
	}
	if config.BoolField {
		t.Errorf("BoolField = %v, want false (env override)", config.BoolField)
	}
	if config.IntField != 100 {
		t.Errorf("IntField = %d, want 100 (from TOML)", config.IntField)
	}
	if want := []string{"toml1", "toml2"}; !reflect.DeepEqual(config.SliceField, want) {
		t.Errorf("SliceField = %v, want %v", config.SliceField, want)
	}
}

func TestLoadConfigCLIFlagWins(t *testing.T) {
	path := writeConfig(t, `
[test]
string_field = "toml value"
int_field = 100
`)
	t.Setenv("VHS_STRING_FIELD", "env value")
	t.Setenv("VHS_INT_FIELD", "200")

	config := &TestConfig{Config: path}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&config.StringField, "string-field", "", "")
	cmd.Flags().IntVar(&config.IntField, "int-field", 0, "")
	if err := cmd.Flags().Parse([]string{"--string-field", "cli value"}); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(config, cmd); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.StringField != "cli value" {
		t.Errorf("StringField = %q, want cli value", config.StringField)
	}
	if config.IntField != 200 {
		t.Errorf("IntField = %d, want 200 (env over TOML)", config.IntField)
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	t.Run("env duration", func(t *testing.T) {
		t.Setenv("VHS_GRACE", "soon")
		if err := LoadConfig(&TestConfig{}, nil); err == nil {
			t.Error("expected error for invalid duration")
		}
	})
	t.Run("env int", func(t *testing.T) {
		t.Setenv("VHS_INT_FIELD", "many")
		if err := LoadConfig(&TestConfig{}, nil); err == nil {
			t.Error("expected error for invalid int")
		}
	})
	t.Run("toml duration", func(t *testing.T) {
		path := writeConfig(t, "[test]\ngrace = \"later\"\n")
		if err := LoadConfig(&TestConfig{Config: path}, nil); err == nil {
			t.Error("expected error for invalid TOML duration")
		}
	})
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"level1": map[string]any{
			"level2": map[string]any{
				"value": "nested_value",
			},
			"simple": "simple_value",
		},
		"root": "root_value",
	}

	tests := []struct {
		path     string
		expected any
	}{
		{"root", "root_value"},
		{"level1.simple", "simple_value"},
		{"level1.level2.value", "nested_value"},
		{"nonexistent", nil},
		{"level1.nonexistent", nil},
		{"root.child", nil},
	}

	for _, test := range tests {
		result := getNestedValue(data, test.path)
		if result != test.expected {
			t.Errorf("getNestedValue(%q) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":         "port",
		"OutputDir":    "output-dir",
		"LoggingLevel": "logging-level",
		"StopGrace":    "stop-grace",
	}
	for field, want := range tests {
		if got := fieldNameToFlag(field); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", field, got, want)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	config := &TestConfig{Config: filepath.Join(t.TempDir(), "nonexistent.toml")}
	if err := LoadConfig(config, nil); err != nil {
		t.Fatalf("LoadConfig should not fail for missing file: %v", err)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, `
[test
invalid toml syntax
`)
	if err := LoadConfig(&TestConfig{Config: path}, nil); err == nil {
		t.Fatalf("LoadConfig should fail for invalid TOML")
	}
}
