package github

import (
	"context"
	"io"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/itam-hack/checkpoint/pkg/domain/interfaces"
	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

type client struct {
	githubClient *github.Client
}

// NewClient creates a new GitHub client with App authentication
func NewClient(appID, installationID int64, privateKey []byte) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	githubClient := github.NewClient(&http.Client{Transport: itr})

	return &client{
		githubClient: githubClient,
	}, nil
}

// DownloadZipball downloads the source code zipball for a specific commit
func (c *client) DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	// Get download URL for zipball
	url, _, err := c.githubClient.Repositories.GetArchiveLink(ctx, owner, repo, github.Zipball, &github.RepositoryContentGetOptions{
		Ref: ref,
	}, 3) // Follow up to 3 redirects
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get zipball download URL",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("ref", ref))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request", goerr.V("url", url.String()))
	}

	// Use the same client transport for authentication
	httpClient := &http.Client{Transport: c.githubClient.Client().Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download zipball", goerr.V("url", url.String()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status code for zipball download",
			goerr.V("code", resp.StatusCode), goerr.V("url", url.String()))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body")
	}

	return data, nil
}

// CreateComment creates a comment on a pull request
func (c *client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.githubClient.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create comment",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
	}
	return nil
}

// CreateCommitStatus sets a commit status on the given SHA
func (c *client) CreateCommitStatus(ctx context.Context, owner, repo, sha string, status *model.CommitStatus) error {
	_, _, err := c.githubClient.Repositories.CreateStatus(ctx, owner, repo, sha, &github.RepoStatus{
		State:       github.Ptr(status.State),
		Description: github.Ptr(status.Description),
		Context:     github.Ptr(status.Context),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create commit status",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("sha", sha))
	}
	return nil
}
