package ui

import (
	"strings"
	"testing"
)

func TestNewConsole(t *testing.T) {
	console := NewConsole()
	if console == nil {
		t.Fatal("NewConsole() returned nil")
	}
}

func TestConsole_formatMessage(t *testing.T) {
	console := &Console{useColors: true}

	tests := []struct {
		style   ConsoleStyle
		message string
		colored bool
	}{
		{StyleNormal, "test message", false},
		{StyleError, "error message", true},
		{StyleWarning, "warning message", true},
		{StyleSuccess, "success message", true},
		{StyleInfo, "info message", true},
	}

	for _, test := range tests {
		result := console.formatMessage(test.style, test.message)

		if test.colored {
			if !strings.Contains(result, test.message) {
				t.Errorf("formatMessage(%v, %q) should contain original message", test.style, test.message)
			}
			if !strings.Contains(result, colorReset) {
				t.Errorf("formatMessage(%v, %q) should contain reset code", test.style, test.message)
			}
		} else {
			if result != test.message {
				t.Errorf("formatMessage(%v, %q) = %q, want %q", test.style, test.message, result, test.message)
			}
		}
	}
}

func TestConsole_formatMessage_NoColors(t *testing.T) {
	console := &Console{useColors: false}

	result := console.formatMessage(StyleError, "test message")
	if result != "test message" {
		t.Errorf("formatMessage with useColors=false should return original message, got %q", result)
	}
}

func TestConsole_StepBanner(t *testing.T) {
	banner := stepBanner(2, 3, "collect-static-assets")

	if !strings.Contains(banner, "Step 2/3") {
		t.Errorf("Expected banner to show position and total, got %q", banner)
	}
	if !strings.Contains(banner, "collect-static-assets") {
		t.Errorf("Expected banner to name the step, got %q", banner)
	}
}

func TestConsole_FormatErrorMessage(t *testing.T) {
	console := NewConsole()

	tests := []struct {
		name       string
		context    string
		cause      string
		suggestion string
		expected   []string
	}{
		{
			name:       "All parts",
			context:    "Applying schema migrations",
			cause:      "The database is unreachable",
			suggestion: "Check the migrations.database DSN",
			expected:   []string{"Applying schema migrations", "Cause: The database is unreachable", "Suggestion: Check the migrations.database DSN"},
		},
		{
			name:     "Context only",
			context:  "Collecting static assets",
			expected: []string{"Collecting static assets"},
		},
		{
			name:     "Empty",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := console.FormatErrorMessage(tt.context, tt.cause, tt.suggestion)
			for _, part := range tt.expected {
				if !strings.Contains(result, part) {
					t.Errorf("Expected formatted message to contain %q, got %q", part, result)
				}
			}
			if len(tt.expected) == 0 && result != "" {
				t.Errorf("Expected empty message, got %q", result)
			}
		})
	}
}
