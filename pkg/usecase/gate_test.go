package usecase_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/itam-hack/checkpoint/pkg/domain/interfaces"
	"github.com/itam-hack/checkpoint/pkg/domain/model"
	"github.com/itam-hack/checkpoint/pkg/infra/memory"
	"github.com/itam-hack/checkpoint/pkg/pipeline"
	"github.com/itam-hack/checkpoint/pkg/usecase"
)

// MockGitHubClient is a mock implementation of GitHubClient
type MockGitHubClient struct {
	mu                  sync.Mutex
	downloadZipballFunc func(ctx context.Context, owner, repo, ref string) ([]byte, error)
	comments            []MockComment
	statuses            []MockStatus
}

type MockComment struct {
	Owner  string
	Repo   string
	Number int
	Body   string
}

type MockStatus struct {
	Owner  string
	Repo   string
	SHA    string
	Status *model.CommitStatus
}

func (m *MockGitHubClient) DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	if m.downloadZipballFunc != nil {
		return m.downloadZipballFunc(ctx, owner, repo, ref)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockGitHubClient) CreateComment(_ context.Context, owner, repo string, number int, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments = append(m.comments, MockComment{Owner: owner, Repo: repo, Number: number, Body: body})
	return nil
}

func (m *MockGitHubClient) CreateCommitStatus(_ context.Context, owner, repo, sha string, status *model.CommitStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, MockStatus{Owner: owner, Repo: repo, SHA: sha, Status: status})
	return nil
}

// MockRunner returns canned step results instead of executing commands
type MockRunner struct {
	results  []model.StepResult
	err      error
	lastDir  string
	pipeline *model.Pipeline
}

func (m *MockRunner) Run(_ context.Context, dir string, p *model.Pipeline) ([]model.StepResult, error) {
	m.lastDir = dir
	m.pipeline = p
	return m.results, m.err
}

// MockArchive records saved step logs
type MockArchive struct {
	saved map[string][]byte
}

func (m *MockArchive) Save(_ context.Context, runID, stepName string, output []byte) error {
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[runID+"/"+stepName] = output
	return nil
}

// MockNotifier records notified run records
type MockNotifier struct {
	records []*model.RunRecord
}

func (m *MockNotifier) NotifyRun(_ context.Context, record *model.RunRecord) error {
	m.records = append(m.records, record)
	return nil
}

// MockAnalyzer returns a fixed annotation
type MockAnalyzer struct {
	analysis string
	err      error
	called   bool
}

func (m *MockAnalyzer) Analyze(_ context.Context, _ *model.RunRecord) (string, error) {
	m.called = true
	return m.analysis, m.err
}

// createTestZip builds a zipball with the single nested root directory
// GitHub produces
func createTestZip(t *testing.T) []byte {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	files := map[string]string{
		"service-abc123/README.md":        "# Test Repository\n",
		"service-abc123/requirements.txt": "fastapi\npytest\n",
		"service-abc123/Dockerfile":       "FROM python:3.11\n",
	}
	for filename, content := range files {
		writer, err := zipWriter.Create(filename)
		gt.NoError(t, err)
		_, err = writer.Write([]byte(content))
		gt.NoError(t, err)
	}
	gt.NoError(t, zipWriter.Close())

	return buf.Bytes()
}

func passingSteps() []model.StepResult {
	now := time.Now()
	return []model.StepResult{
		{Name: "install-deps", Status: model.StatusSucceeded, StartedAt: now, FinishedAt: now},
		{Name: "run-tests", Status: model.StatusSucceeded, Output: "2 passed", StartedAt: now, FinishedAt: now},
	}
}

func failingSteps() ([]model.StepResult, error) {
	now := time.Now()
	results := []model.StepResult{
		{Name: "install-deps", Status: model.StatusSucceeded, StartedAt: now, FinishedAt: now},
		{Name: "run-tests", Status: model.StatusFailed, ExitCode: 1, Output: "assert 1 == 2", StartedAt: now, FinishedAt: now},
	}
	return results, errors.New("step run-tests failed")
}

func TestGateUseCase_RunGate_Success(t *testing.T) {
	ctx := context.Background()
	zipData := createTestZip(t)

	mockClient := &MockGitHubClient{
		downloadZipballFunc: func(ctx context.Context, owner, repo, ref string) ([]byte, error) {
			return zipData, nil
		},
	}
	runner := &MockRunner{results: passingSteps()}
	repo := memory.New()
	notifier := &MockNotifier{}

	uc := usecase.NewGate(mockClient, runner, pipeline.Default(), repo,
		usecase.WithGateNotifier(notifier))

	record, err := uc.RunGate(ctx, &interfaces.GateRequest{
		Repository: "itam-hack/service",
		Ref:        "abc123",
		Number:     7,
		Source:     model.SourcePullRequest,
	})
	gt.NoError(t, err)
	gt.Value(t, record.Status).Equal(model.StatusSucceeded)
	gt.Value(t, record.Kind).Equal(model.TriggerGate)

	// Runner received the extracted source root, not the temp dir itself
	gt.String(t, runner.lastDir).Contains("service-abc123")
	gt.Value(t, runner.pipeline.Name).Equal("gate")

	// Report comment and commit status were posted
	gt.Number(t, len(mockClient.comments)).Equal(1)
	gt.Value(t, mockClient.comments[0].Number).Equal(7)
	gt.String(t, mockClient.comments[0].Body).Contains("run-tests")
	gt.Number(t, len(mockClient.statuses)).Equal(1)
	gt.Value(t, mockClient.statuses[0].SHA).Equal("abc123")
	gt.Value(t, mockClient.statuses[0].Status.State).Equal("success")

	// Record was persisted and the notifier fired
	stored, err := repo.Get(ctx, record.ID)
	gt.NoError(t, err)
	gt.Value(t, stored.Status).Equal(model.StatusSucceeded)
	gt.Number(t, len(notifier.records)).Equal(1)
}

func TestGateUseCase_RunGate_TestFailure(t *testing.T) {
	ctx := context.Background()
	zipData := createTestZip(t)

	results, runErr := failingSteps()
	mockClient := &MockGitHubClient{
		downloadZipballFunc: func(ctx context.Context, owner, repo, ref string) ([]byte, error) {
			return zipData, nil
		},
	}
	runner := &MockRunner{results: results, err: runErr}
	repo := memory.New()
	analyzer := &MockAnalyzer{analysis: "pytest assertion mismatch in test_teams"}
	archive := &MockArchive{}

	uc := usecase.NewGate(mockClient, runner, pipeline.Default(), repo,
		usecase.WithGateAnalyzer(analyzer),
		usecase.WithGateArchive(archive))

	record, err := uc.RunGate(ctx, &interfaces.GateRequest{
		Repository: "itam-hack/service",
		Ref:        "abc123",
		Number:     7,
		Source:     model.SourcePullRequest,
	})

	// A failing test run is a regular outcome, not an error
	gt.NoError(t, err)
	gt.Value(t, record.Status).Equal(model.StatusFailed)

	gt.Value(t, analyzer.called).Equal(true)
	gt.Number(t, len(mockClient.comments)).Equal(1)
	gt.String(t, mockClient.comments[0].Body).Contains("Failure analysis")
	gt.String(t, mockClient.comments[0].Body).Contains("pytest assertion mismatch")

	gt.Number(t, len(mockClient.statuses)).Equal(1)
	gt.Value(t, mockClient.statuses[0].Status.State).Equal("failure")

	// Step output landed in the archive
	gt.Value(t, string(archive.saved[record.ID+"/run-tests"])).Equal("assert 1 == 2")
}

func TestGateUseCase_RunGate_AnalyzerErrorIsBestEffort(t *testing.T) {
	ctx := context.Background()
	zipData := createTestZip(t)

	results, runErr := failingSteps()
	mockClient := &MockGitHubClient{
		downloadZipballFunc: func(ctx context.Context, owner, repo, ref string) ([]byte, error) {
			return zipData, nil
		},
	}
	runner := &MockRunner{results: results, err: runErr}
	analyzer := &MockAnalyzer{err: errors.New("model unavailable")}

	uc := usecase.NewGate(mockClient, runner, pipeline.Default(), memory.New(),
		usecase.WithGateAnalyzer(analyzer))

	record, err := uc.RunGate(ctx, &interfaces.GateRequest{
		Repository: "itam-hack/service",
		Ref:        "abc123",
		Number:     7,
		Source:     model.SourcePullRequest,
	})
	gt.NoError(t, err)
	gt.Value(t, record.Status).Equal(model.StatusFailed)

	// The report still goes out without the annotation
	gt.Number(t, len(mockClient.comments)).Equal(1)
	gt.Value(t, analyzer.called).Equal(true)
}

func TestGateUseCase_RunGate_ManualRunSkipsReporting(t *testing.T) {
	ctx := context.Background()
	zipData := createTestZip(t)

	mockClient := &MockGitHubClient{
		downloadZipballFunc: func(ctx context.Context, owner, repo, ref string) ([]byte, error) {
			return zipData, nil
		},
	}
	runner := &MockRunner{results: passingSteps()}

	uc := usecase.NewGate(mockClient, runner, pipeline.Default(), memory.New())

	record, err := uc.RunGate(ctx, &interfaces.GateRequest{
		Repository: "itam-hack/service",
		Ref:        "main",
		Source:     model.SourceManual,
	})
	gt.NoError(t, err)
	gt.Value(t, record.Status).Equal(model.StatusSucceeded)

	gt.Number(t, len(mockClient.comments)).Equal(0)
	gt.Number(t, len(mockClient.statuses)).Equal(0)
}

func TestGateUseCase_RunGate_DownloadError(t *testing.T) {
	ctx := context.Background()

	mockClient := &MockGitHubClient{
		downloadZipballFunc: func(ctx context.Context, owner, repo, ref string) ([]byte, error) {
			return nil, errors.New("download error")
		},
	}
	repo := memory.New()

	uc := usecase.NewGate(mockClient, &MockRunner{}, pipeline.Default(), repo)

	record, err := uc.RunGate(ctx, &interfaces.GateRequest{
		Repository: "itam-hack/service",
		Ref:        "abc123",
		Number:     7,
		Source:     model.SourcePullRequest,
	})
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to check out source")
	gt.Value(t, record.Failed()).Equal(true)

	stored, err := repo.Get(ctx, record.ID)
	gt.NoError(t, err)
	gt.Value(t, stored.Status).Equal(model.StatusFailed)
}

func TestGateUseCase_RunGate_MalformedRepository(t *testing.T) {
	ctx := context.Background()

	uc := usecase.NewGate(&MockGitHubClient{}, &MockRunner{}, pipeline.Default(), memory.New())

	record, err := uc.RunGate(ctx, &interfaces.GateRequest{
		Repository: "no-owner-separator",
		Ref:        "abc123",
		Source:     model.SourceManual,
	})
	gt.Error(t, err)
	gt.Value(t, record.Failed()).Equal(true)
}
