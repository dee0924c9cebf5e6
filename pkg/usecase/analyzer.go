package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/itam-hack/checkpoint/pkg/domain/interfaces"
	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

//go:embed prompts/failure_analysis_system.md
var analysisSystemPrompt string

//go:embed prompts/failure_analysis_user.md
var analysisUserTemplate string

// maxOutputForLLM bounds the amount of step output sent to the model.
const maxOutputForLLM = 8000

type failureAnalyzer struct {
	llmClient    gollem.LLMClient
	userTemplate *template.Template
}

// NewFailureAnalyzer creates an LLM-backed failure analyzer
func NewFailureAnalyzer(llmClient gollem.LLMClient) (interfaces.FailureAnalyzer, error) {
	tmpl, err := template.New("user").Parse(analysisUserTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse user prompt template")
	}

	return &failureAnalyzer{
		llmClient:    llmClient,
		userTemplate: tmpl,
	}, nil
}

// Analyze summarizes the first failed step of the run and renders the
// result as markdown for the PR comment.
func (a *failureAnalyzer) Analyze(ctx context.Context, record *model.RunRecord) (string, error) {
	logger := ctxlog.From(ctx)

	failed := record.FailedStep()
	if failed == nil {
		return "", goerr.New("run has no failed step", goerr.V("run_id", record.ID))
	}

	var buf bytes.Buffer
	if err := a.userTemplate.Execute(&buf, map[string]string{
		"Repository": record.Repository,
		"Step":       failed.Name,
		"ExitCode":   strconv.Itoa(failed.ExitCode),
		"Output":     tailOf(failed.Output, maxOutputForLLM),
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute user prompt template")
	}

	logger.Debug("Calling LLM for failure analysis",
		"run_id", record.ID,
		"prompt_length", buf.Len(),
	)

	session, err := a.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionSystemPrompt(analysisSystemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buf.String()))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate LLM content")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("no response from LLM")
	}

	var analysis model.FailureAnalysis
	if err := json.Unmarshal([]byte(resp.Texts[0]), &analysis); err != nil {
		return "", goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}

	return formatAnalysis(&analysis), nil
}

// formatAnalysis renders the analysis as markdown
func formatAnalysis(analysis *model.FailureAnalysis) string {
	var sb strings.Builder

	sb.WriteString(analysis.Summary)
	sb.WriteString("\n")

	if analysis.LikelyCause != "" {
		fmt.Fprintf(&sb, "\n**Likely cause**: %s\n", analysis.LikelyCause)
	}
	if len(analysis.Suggestions) > 0 {
		sb.WriteString("\n**Suggestions**:\n")
		for _, s := range analysis.Suggestions {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}

	return sb.String()
}

func tailOf(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
