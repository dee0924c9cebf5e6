package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/itam-hack/checkpoint/pkg/domain/interfaces"
	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

// checkoutSource downloads the repository zipball at ref and extracts it
// to an ephemeral directory. The caller owns cleanup of TempDir.
func checkoutSource(ctx context.Context, gh interfaces.GitHubClient, owner, repo, ref string) (*model.Checkout, error) {
	logger := ctxlog.From(ctx)

	zipData, err := gh.DownloadZipball(ctx, owner, repo, ref)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download zipball",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("ref", ref))
	}

	logger.Info("Downloaded zipball",
		"size_bytes", len(zipData),
		"owner", owner,
		"repo", repo,
		"ref", ref,
	)

	checkout, err := extractZip(ctx, zipData)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract zipball",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}

	logger.Info("Extracted zipball to temporary directory",
		"temp_dir", checkout.TempDir,
		"root_dir", checkout.RootDir,
		"file_count", len(checkout.Files),
		"total_size_bytes", checkout.Size,
	)

	return checkout, nil
}

// extractZip extracts ZIP data to a temporary directory
func extractZip(ctx context.Context, zipData []byte) (*model.Checkout, error) {
	logger := ctxlog.From(ctx)

	tempDir, err := os.MkdirTemp("", "checkpoint-run-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temporary directory")
	}

	if err := os.Chmod(tempDir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to set directory permissions", goerr.V("temp_dir", tempDir))
	}

	logger.Debug("Created temporary directory", "temp_dir", tempDir)

	zipReader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create zip reader")
	}

	var extractedFiles []string
	var totalSize int64

	for _, file := range zipReader.File {
		if err := extractFile(file, tempDir); err != nil {
			return nil, goerr.Wrap(err, "failed to extract file", goerr.V("file", file.Name))
		}

		extractedFiles = append(extractedFiles, file.Name)
		totalSize += int64(file.UncompressedSize64)
	}

	return &model.Checkout{
		TempDir: tempDir,
		RootDir: sourceRoot(tempDir, extractedFiles),
		Files:   extractedFiles,
		Size:    totalSize,
	}, nil
}

// sourceRoot resolves the actual source root: GitHub zipballs nest all
// content under a single "<owner>-<repo>-<sha>" directory.
func sourceRoot(tempDir string, files []string) string {
	if len(files) == 0 {
		return tempDir
	}

	first, _, found := strings.Cut(files[0], "/")
	if !found {
		return tempDir
	}
	for _, f := range files {
		if !strings.HasPrefix(f, first+"/") && f != first {
			return tempDir
		}
	}
	return filepath.Join(tempDir, first)
}

// extractFile extracts a single file from ZIP to the destination directory
func extractFile(file *zip.File, destDir string) error {
	// Security check: prevent path traversal attacks
	destPath := filepath.Join(destDir, file.Name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return goerr.New("invalid file path detected",
			goerr.V("file", file.Name), goerr.V("dest", destPath))
	}

	rc, err := file.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open file in zip", goerr.V("file", file.Name))
	}
	defer rc.Close()

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, file.FileInfo().Mode())
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return goerr.Wrap(err, "failed to create parent directories", goerr.V("dir", filepath.Dir(destPath)))
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.FileInfo().Mode())
	if err != nil {
		return goerr.Wrap(err, "failed to create destination file", goerr.V("path", destPath))
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, rc); err != nil {
		return goerr.Wrap(err, "failed to copy file content", goerr.V("path", destPath))
	}

	return nil
}

// cleanupCheckout removes the run's temporary directory, logging instead
// of failing when removal does not succeed.
func cleanupCheckout(ctx context.Context, checkout *model.Checkout) {
	if checkout == nil || checkout.TempDir == "" {
		return
	}
	if err := os.RemoveAll(checkout.TempDir); err != nil {
		ctxlog.From(ctx).Warn("Failed to clean up temporary directory",
			"temp_dir", checkout.TempDir,
			"error", err,
		)
		return
	}
	ctxlog.From(ctx).Debug("Cleaned up temporary directory", "temp_dir", checkout.TempDir)
}
