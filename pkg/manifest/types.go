package manifest

// Manifest is the root object that holds the entire configuration for a
// deploykit run. It's populated by parsing the user's deploykit.yaml file.
type Manifest struct {
	APIVersion string   `yaml:"apiVersion" validate:"required"`
	Kind       string   `yaml:"kind" validate:"required,eq=Deployment"`
	Metadata   Metadata `yaml:"metadata" validate:"required"`
	Spec       Spec     `yaml:"spec" validate:"required"`
}

// Metadata contains application-level metadata.
type Metadata struct {
	Name        string            `yaml:"name" validate:"required"`
	Description string            `yaml:"description"`
	Labels      map[string]string `yaml:"labels,omitempty"`
}

// Spec contains the detailed specification of the provisioning sequence.
type Spec struct {
	Runtime      Runtime           `yaml:"runtime"`
	Dependencies Dependencies      `yaml:"dependencies" validate:"required"`
	Assets       Assets            `yaml:"assets" validate:"required"`
	Migrations   Migrations        `yaml:"migrations" validate:"required"`
	Admin        Admin             `yaml:"admin,omitempty"`
	Notify       *Notify           `yaml:"notify,omitempty"`
	Env          map[string]string `yaml:"env,omitempty"`
}

// Runtime selects how collaborator commands are executed.
type Runtime struct {
	Kind string `yaml:"kind" validate:"omitempty,oneof=local docker"`
}

// Dependencies configures the install-dependencies step.
type Dependencies struct {
	Manager  string `yaml:"manager" validate:"required,oneof=pip poetry npm"`
	Manifest string `yaml:"manifest" validate:"required"`
	Image    string `yaml:"image,omitempty"`
}

// Assets configures the collect-static-assets step. Source is either a local
// directory or a git repository URL that is cloned before collection.
type Assets struct {
	Source      string `yaml:"source" validate:"required"`
	Destination string `yaml:"destination" validate:"required"`
	Ref         string `yaml:"ref,omitempty"`
	Clean       bool   `yaml:"clean,omitempty"`
}

// Migrations configures the apply-migrations step.
type Migrations struct {
	Engine   string `yaml:"engine" validate:"required,oneof=django migrate"`
	Path     string `yaml:"path" validate:"required"`
	Database string `yaml:"database,omitempty"`
	Image    string `yaml:"image,omitempty"`
}

// Admin configures the create-admin-user step. The step exists in the catalog
// but only joins the active sequence when Enabled is true.
type Admin struct {
	Enabled bool     `yaml:"enabled,omitempty"`
	Command []string `yaml:"command,omitempty"`
	Image   string   `yaml:"image,omitempty"`
}

// Notify configures the optional post-run deployment status notification.
type Notify struct {
	Provider    string `yaml:"provider" validate:"required,oneof=gitlab"`
	URL         string `yaml:"url" validate:"omitempty,url"`
	Project     string `yaml:"project" validate:"required"`
	Ref         string `yaml:"ref" validate:"required"`
	Environment string `yaml:"environment,omitempty"`
}
