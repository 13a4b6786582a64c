package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	gitlab "github.com/xanzy/go-gitlab"

	"deploykit/internal/sequencer"
	"deploykit/pkg/manifest"
)

// Notifier publishes the terminal outcome of a run to an external system.
// Publishing never alters the run's result; a notification failure is the
// caller's to log, not to escalate.
type Notifier interface {
	Publish(ctx context.Context, outcome *sequencer.Outcome) error
}

// GitLabNotifier implements the Notifier interface by setting a commit
// status on the deployed ref.
type GitLabNotifier struct {
	client *gitlab.Client
	cfg    *manifest.Notify
}

// NewGitLabNotifier creates a GitLabNotifier with authentication.
func NewGitLabNotifier(cfg *manifest.Notify) (*GitLabNotifier, error) {
	token := os.Getenv("DEPLOYKIT_GITLAB_TOKEN")
	if token == "" {
		token = os.Getenv("GITLAB_PRIVATE_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("DEPLOYKIT_GITLAB_TOKEN environment variable is required for GitLab notification")
	}

	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = "https://gitlab.com"
	}

	client, err := gitlab.NewClient(token, gitlab.WithBaseURL(baseURL+"/api/v4"))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	return &GitLabNotifier{
		client: client,
		cfg:    cfg,
	}, nil
}

// Publish sets the commit status for the configured project and ref to
// reflect the run's outcome.
func (n *GitLabNotifier) Publish(ctx context.Context, outcome *sequencer.Outcome) error {
	state := gitlab.Success
	description := "environment provisioned"
	if outcome.Status == sequencer.StatusFailed {
		state = gitlab.Failed
		description = fmt.Sprintf("provisioning failed at step %s", outcome.FailedStep)
	}

	statusContext := "deploykit"
	if n.cfg.Environment != "" {
		statusContext = fmt.Sprintf("deploykit/%s", n.cfg.Environment)
	}

	opts := &gitlab.SetCommitStatusOptions{
		State:       state,
		Name:        gitlab.String(statusContext),
		Context:     gitlab.String(statusContext),
		Description: gitlab.String(description),
	}

	slog.Info("Publishing deployment status", "project", n.cfg.Project, "ref", n.cfg.Ref, "state", state)

	_, _, err := n.client.Commits.SetCommitStatus(n.cfg.Project, n.cfg.Ref, opts, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to set GitLab commit status: %w", err)
	}

	return nil
}
