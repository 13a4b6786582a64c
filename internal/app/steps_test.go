package app

import (
	"strings"
	"testing"

	"deploykit/pkg/manifest"
)

func testManifest() *manifest.Manifest {
	return &manifest.Manifest{
		APIVersion: "v1",
		Kind:       "Deployment",
		Metadata:   manifest.Metadata{Name: "travel-api"},
		Spec: manifest.Spec{
			Dependencies: manifest.Dependencies{Manager: "pip", Manifest: "./requirements.txt"},
			Assets:       manifest.Assets{Source: "./static", Destination: "./staticfiles"},
			Migrations:   manifest.Migrations{Engine: "django", Path: "./app"},
		},
	}
}

func TestBuildSteps_DefaultSequence(t *testing.T) {
	steps, err := buildSteps(testManifest(), nil, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{StepInstallDependencies, StepCollectStaticAssets, StepApplyMigrations}
	if len(steps) != len(expected) {
		t.Fatalf("Expected %d steps, got %d", len(expected), len(steps))
	}
	for i, name := range expected {
		if steps[i].Name() != name {
			t.Errorf("Expected step %d to be %q, got %q", i, name, steps[i].Name())
		}
	}
}

func TestBuildSteps_AdminStepIsCatalogOnlyByDefault(t *testing.T) {
	m := testManifest()
	m.Spec.Admin = manifest.Admin{Command: []string{"python", "manage.py", "initadmin"}}

	steps, err := buildSteps(m, nil, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, step := range steps {
		if step.Name() == StepCreateAdminUser {
			t.Error("Expected admin step to be excluded when not enabled")
		}
	}
}

func TestBuildSteps_AdminStepEnabled(t *testing.T) {
	m := testManifest()
	m.Spec.Admin = manifest.Admin{
		Enabled: true,
		Command: []string{"python", "manage.py", "initadmin"},
	}

	steps, err := buildSteps(m, nil, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(steps) != 4 {
		t.Fatalf("Expected 4 steps with admin enabled, got %d", len(steps))
	}
	if steps[3].Name() != StepCreateAdminUser {
		t.Errorf("Expected last step to be %q, got %q", StepCreateAdminUser, steps[3].Name())
	}
}

func TestBuildSteps_AdminEnabledWithoutCommand(t *testing.T) {
	m := testManifest()
	m.Spec.Admin = manifest.Admin{Enabled: true}

	_, err := buildSteps(m, nil, true)
	if err == nil {
		t.Fatal("Expected configuration error for enabled admin step without a command")
	}
	if !strings.Contains(err.Error(), "spec.admin.command is empty") {
		t.Errorf("Expected admin command error, got: %v", err)
	}
}

func TestStageNames(t *testing.T) {
	m := testManifest()

	if got := NewInstallStage(m, nil, true).Name(); got != StepInstallDependencies {
		t.Errorf("Expected %q, got %q", StepInstallDependencies, got)
	}
	if got := NewCollectStage(m, true).Name(); got != StepCollectStaticAssets {
		t.Errorf("Expected %q, got %q", StepCollectStaticAssets, got)
	}
	if got := NewMigrateStage(m, nil, true).Name(); got != StepApplyMigrations {
		t.Errorf("Expected %q, got %q", StepApplyMigrations, got)
	}
	if got := NewAdminStage(m, nil, true).Name(); got != StepCreateAdminUser {
		t.Errorf("Expected %q, got %q", StepCreateAdminUser, got)
	}
}

func TestNewRunner(t *testing.T) {
	if _, err := NewRunner(""); err != nil {
		t.Errorf("Expected empty kind to default to local runner, got: %v", err)
	}
	if _, err := NewRunner("local"); err != nil {
		t.Errorf("Expected local runner, got: %v", err)
	}
	if _, err := NewRunner("podman"); err == nil {
		t.Error("Expected error for unsupported runtime kind")
	}
}

func TestValidatePrerequisites(t *testing.T) {
	if err := ValidatePrerequisites(""); err != nil {
		t.Errorf("Expected empty kind to validate, got: %v", err)
	}
	if err := ValidatePrerequisites("local"); err != nil {
		t.Errorf("Expected local runtime to validate, got: %v", err)
	}

	err := ValidatePrerequisites("podman")
	if err == nil {
		t.Fatal("Expected error for unsupported runtime kind")
	}
	if !strings.Contains(err.Error(), "prerequisite check failed") {
		t.Errorf("Expected prerequisite check failure, got: %v", err)
	}
}
