package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"

	"deploykit/pkg/runtime"
)

// DockerRunner implements the Runner interface by executing each collaborator
// command in a throwaway Docker container.
type DockerRunner struct {
	client *client.Client
}

// NewDockerRunner creates a new DockerRunner instance using client.FromEnv.
func NewDockerRunner() (*DockerRunner, error) {
	dockerClient, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	// Check if Docker daemon is accessible
	ctx := context.Background()
	_, err = dockerClient.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Docker daemon: %w", err)
	}

	return &DockerRunner{
		client: dockerClient,
	}, nil
}

// Run pulls the image, runs the command in a container with the requested
// mounts and environment, streams its output, and reports a non-zero exit
// status as an error. The container is removed regardless of outcome.
func (d *DockerRunner) Run(ctx context.Context, spec runtime.ExecSpec, output io.Writer) error {
	if spec.Image == "" {
		return fmt.Errorf("docker runner requires an image for command %v", spec.Command)
	}

	if err := d.pullImage(ctx, spec.Image); err != nil {
		return err
	}

	slog.Info("Running container", "image", spec.Image, "command", spec.Command)

	var mounts []mount.Mount
	for hostPath, containerPath := range spec.VolumeMounts {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: hostPath,
			Target: containerPath,
		})
	}

	var envVars []string
	for key, value := range spec.EnvVars {
		envVars = append(envVars, fmt.Sprintf("%s=%s", key, value))
	}

	containerConfig := &container.Config{
		Image:      spec.Image,
		Cmd:        spec.Command,
		Env:        envVars,
		WorkingDir: spec.WorkingDirectory,
	}

	hostConfig := &container.HostConfig{
		Mounts: mounts,
	}

	resp, err := d.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, "")
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	containerID := resp.ID

	defer func() {
		if err := d.client.ContainerRemove(context.Background(), containerID, container.RemoveOptions{Force: true}); err != nil {
			slog.Error("Failed to remove container", "containerID", containerID, "error", err)
		}
	}()

	if err := d.client.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	logs, err := d.client.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to get container logs: %w", err)
	}
	defer logs.Close()

	if _, err := io.Copy(output, logs); err != nil {
		return fmt.Errorf("failed to stream container output: %w", err)
	}

	statusCh, errCh := d.client.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to wait for container: %w", err)
		}
	case status := <-statusCh:
		if status.StatusCode != 0 {
			return fmt.Errorf("command %v exited with status %d", spec.Command, status.StatusCode)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// pullImage pulls a Docker image.
func (d *DockerRunner) pullImage(ctx context.Context, imageName string) error {
	slog.Info("Pulling Docker image", "image", imageName)

	reader, err := d.client.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	// Stream the pull output (but don't print it to avoid clutter)
	_, err = io.Copy(io.Discard, reader)
	if err != nil {
		return fmt.Errorf("failed to stream image pull output: %w", err)
	}

	slog.Info("Successfully pulled Docker image", "image", imageName)
	return nil
}
