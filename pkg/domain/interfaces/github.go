package interfaces

import (
	"context"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// DownloadZipball downloads the source code zipball for a specific commit
	DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error)

	// CreateComment creates a comment on a pull request
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error

	// CreateCommitStatus sets a commit status on the given SHA
	CreateCommitStatus(ctx context.Context, owner, repo, sha string, status *model.CommitStatus) error
}
