package exercise

import "testing"

func TestParseType(t *testing.T) {
	for _, exType := range All() {
		got, err := ParseType(string(exType))
		if err != nil {
			t.Errorf("ParseType(%q) error = %v", exType, err)
		}
		if got != exType {
			t.Errorf("ParseType(%q) = %q, want %q", exType, got, exType)
		}
	}

	if _, err := ParseType("jumping_jacks"); err == nil {
		t.Error("ParseType should reject unknown exercises")
	}
}

func TestType_DisplayName(t *testing.T) {
	seen := make(map[string]Type)
	for _, exType := range All() {
		name := exType.DisplayName()
		if name == "" || name == string(exType) {
			t.Errorf("%s.DisplayName() = %q, want a human-readable name", exType, name)
		}
		if prev, dup := seen[name]; dup {
			t.Errorf("%s and %s share display name %q", prev, exType, name)
		}
		seen[name] = exType
	}

	if got := Type("handstand").DisplayName(); got != "handstand" {
		t.Errorf("unknown type DisplayName() = %q, want raw value", got)
	}
}
