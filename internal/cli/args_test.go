package cli

import (
	"testing"
)

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"records show no id", []string{"records", "show"}},
		{"records show two ids", []string{"records", "show", "a", "b"}},
		{"records resolve no id", []string{"records", "resolve"}},
		{"records remove no id", []string{"records", "remove"}},
		{"records list extra arg", []string{"records", "list", "extra"}},
		{"expert-stats no name", []string{"expert-stats"}},
		{"stats extra arg", []string{"stats", "extra"}},
		{"experts show no id", []string{"experts", "show"}},
		{"add-month missing year", []string{"experts", "add-month", "id", "January"}},
		{"set-current missing plan", []string{"experts", "set-current", "id"}},
		{"active-week no id", []string{"experts", "active-week"}},
		{"import visits no file", []string{"import", "visits"}},
		{"import experts no file", []string{"import", "experts"}},
		{"config set-server no url", []string{"config", "set-server"}},
		{"serve extra arg", []string{"serve", "extra"}},
		{"version extra arg", []string{"version", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAddMonthRejectsInvalidYear(t *testing.T) {
	for _, year := range []string{"abc", "0", "-2024"} {
		t.Run(year, func(t *testing.T) {
			if _, err := executeCommand("experts", "add-month", "id", "January", year); err == nil {
				t.Fatal("expected error for invalid year")
			}
		})
	}
}

func TestSetCurrentRejectsInvalidPlan(t *testing.T) {
	for _, plan := range []string{"x", "-1"} {
		t.Run(plan, func(t *testing.T) {
			if _, err := executeCommand("experts", "set-current", "id", plan); err == nil {
				t.Fatal("expected error for invalid plan position")
			}
		})
	}
}

func TestActiveWeekRejectsInvalidDate(t *testing.T) {
	if _, err := executeCommand("experts", "active-week", "id", "--date", "10/01/2024"); err == nil {
		t.Fatal("expected error for invalid date")
	}
}

func TestImportMissingFile(t *testing.T) {
	if _, err := executeCommand("import", "visits", "/nonexistent/visits.xlsx", "--db", t.TempDir()+"/desk.db"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
