package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	deployerrors "deploykit/internal/errors"
	"deploykit/pkg/manifest"
)

// InventoryFileName is the manifest of collected files written into the
// destination, so a serving layer can verify what was published.
const InventoryFileName = "staticfiles.json"

// inventory lists every collected file, relative to the destination.
type inventory struct {
	Version string   `json:"version"`
	Count   int      `json:"count"`
	Files   []string `json:"files"`
}

// Collect materializes static assets: it resolves the source (cloning it
// first when it is a git repository URL), copies the tree into the
// destination, and writes an inventory of what was published. Collection is
// idempotent; re-running overwrites files with identical content.
func Collect(ctx context.Context, spec *manifest.Assets, isDryRun bool) error {
	if spec == nil {
		return fmt.Errorf("assets spec cannot be nil")
	}

	// A dry run must leave no trace, network included, so a repository
	// source is previewed without cloning it.
	if isDryRun && isGitSource(spec.Source) {
		fmt.Printf("DRY RUN: Would clone asset repository: %s\n", spec.Source)
		fmt.Printf("DRY RUN: Would copy assets from %s to %s\n", spec.Source, spec.Destination)
		fmt.Printf("DRY RUN: Would create file: %s\n", filepath.Join(spec.Destination, InventoryFileName))
		return nil
	}

	sourcePath, cleanup, err := resolveSource(ctx, spec)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if _, err := os.Stat(sourcePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("asset source directory not found: %s", sourcePath)
		}
		return fmt.Errorf("failed to stat asset source %s: %w", sourcePath, err)
	}

	if isDryRun {
		return performDryRun(sourcePath, spec.Destination)
	}

	if spec.Clean {
		if err := os.RemoveAll(spec.Destination); err != nil {
			return fmt.Errorf("failed to clean destination directory: %w", err)
		}
	}

	if err := os.MkdirAll(spec.Destination, 0750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	collected, err := copyDirectory(sourcePath, spec.Destination)
	if err != nil {
		return deployerrors.NewCollectError(
			fmt.Sprintf("Failed to copy static assets to %s", spec.Destination),
			err.Error(),
			"Verify the destination is writable and has enough free space",
			fmt.Errorf("failed to copy asset directory: %w", err),
		)
	}

	if err := writeInventory(spec.Destination, collected); err != nil {
		return fmt.Errorf("failed to write asset inventory: %w", err)
	}

	slog.Info("Static assets collected", "source", spec.Source, "destination", spec.Destination, "files", len(collected))
	return nil
}

// resolveSource returns the local directory holding the assets. Git URLs are
// shallow-cloned into a temporary directory removed by the returned cleanup.
func resolveSource(ctx context.Context, spec *manifest.Assets) (string, func(), error) {
	if !isGitSource(spec.Source) {
		return spec.Source, nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "deploykit-assets-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory for asset clone: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			slog.Warn("Failed to remove asset clone directory", "path", tmpDir, "error", err)
		}
	}

	cloneOpts := &git.CloneOptions{
		URL:   spec.Source,
		Depth: 1,
	}
	if spec.Ref != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(spec.Ref)
		cloneOpts.SingleBranch = true
	}

	slog.Info("Cloning asset repository", "url", spec.Source, "ref", spec.Ref)
	if _, err := git.PlainCloneContext(ctx, tmpDir, false, cloneOpts); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to clone asset repository %s: %w", spec.Source, err)
	}

	return tmpDir, cleanup, nil
}

// isGitSource reports whether the asset source is a repository URL rather
// than a local directory.
func isGitSource(source string) bool {
	return strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "ssh://") ||
		strings.HasPrefix(source, "git@")
}

// performDryRun logs what would be copied without touching the destination.
func performDryRun(sourcePath, destPath string) error {
	fmt.Printf("DRY RUN: Would copy assets from %s to %s\n", sourcePath, destPath)

	err := filepath.WalkDir(sourcePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(sourcePath, path)
		if err != nil {
			return err
		}
		if skipEntry(relPath, d) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		destFile := filepath.Join(destPath, relPath)
		if d.IsDir() {
			fmt.Printf("DRY RUN: Would create directory: %s\n", destFile)
		} else {
			fmt.Printf("DRY RUN: Would copy file: %s\n", destFile)
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to walk asset source directory: %w", err)
	}

	fmt.Printf("DRY RUN: Would create file: %s\n", filepath.Join(destPath, InventoryFileName))
	return nil
}

// copyDirectory recursively copies a directory from src to dst, returning the
// relative paths of the files copied. Git metadata is excluded.
func copyDirectory(src, dst string) ([]string, error) {
	var collected []string

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if skipEntry(relPath, d) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		destPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			return os.MkdirAll(destPath, 0750)
		}

		if err := copyFile(path, destPath); err != nil {
			return err
		}
		collected = append(collected, filepath.ToSlash(relPath))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(collected)
	return collected, nil
}

// skipEntry excludes git metadata from collection.
func skipEntry(relPath string, d fs.DirEntry) bool {
	return d.IsDir() && filepath.Base(relPath) == ".git"
}

// validatePath ensures the path is safe and doesn't contain directory traversal sequences
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains directory traversal: %s", path)
	}
	return nil
}

// copyFile copies a single file from src to dst.
func copyFile(src, dst string) error {
	// Validate paths to prevent directory traversal
	if err := validatePath(src); err != nil {
		return fmt.Errorf("invalid source path: %w", err)
	}
	if err := validatePath(dst); err != nil {
		return fmt.Errorf("invalid destination path: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", src, err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	if err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	// Copy file permissions
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to get source file info: %w", err)
	}

	return os.Chmod(dst, srcInfo.Mode())
}

// writeInventory records the collected files in the destination.
func writeInventory(destPath string, files []string) error {
	inv := inventory{
		Version: "1.0",
		Count:   len(files),
		Files:   files,
	}

	jsonBytes, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal asset inventory: %w", err)
	}

	inventoryPath := filepath.Join(destPath, InventoryFileName)
	if err := os.WriteFile(inventoryPath, jsonBytes, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", InventoryFileName, err)
	}

	return nil
}
