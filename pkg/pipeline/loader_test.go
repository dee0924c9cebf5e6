package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
	"github.com/itam-hack/checkpoint/pkg/pipeline"
)

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkpoint.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	def := pipeline.Default()

	p := def.GatePipeline()
	gt.V(t, len(p.Steps)).Equal(2)
	gt.V(t, p.Steps[0].Name).Equal("install-deps")
	gt.V(t, p.Steps[1].Name).Equal("run-tests")

	// Timezone is exported to every step
	for _, step := range p.Steps {
		gt.V(t, step.Env["TZ"]).Equal("Europe/Moscow")
	}
}

func TestLoad(t *testing.T) {
	t.Run("Overrides gate steps and timezone", func(t *testing.T) {
		path := writeDefinition(t, `
timezone = "UTC"

[[gate.steps]]
name = "deps"
command = "npm"
args = ["ci"]

[[gate.steps]]
name = "tests"
command = "npm"
args = ["test"]
env = { CI = "true" }
`)

		def, err := pipeline.Load(path)
		gt.NoError(t, err)

		p := def.GatePipeline()
		gt.V(t, len(p.Steps)).Equal(2)
		gt.V(t, p.Steps[0].Command).Equal("npm")
		gt.V(t, p.Steps[1].Env["CI"]).Equal("true")
		gt.V(t, p.Steps[1].Env["TZ"]).Equal("UTC")
	})

	t.Run("Keeps defaults for absent sections", func(t *testing.T) {
		path := writeDefinition(t, `timezone = "UTC"`)

		def, err := pipeline.Load(path)
		gt.NoError(t, err)
		gt.V(t, def.Publish.Dockerfile).Equal("Dockerfile")
		gt.V(t, len(def.Gate.Steps)).Equal(2)
	})

	t.Run("Rejects unknown fields", func(t *testing.T) {
		path := writeDefinition(t, `
[[gate.steps]]
name = "tests"
command = "pytest"
retries = 3
`)

		_, err := pipeline.Load(path)
		gt.Error(t, err)
	})

	t.Run("Rejects step without command", func(t *testing.T) {
		path := writeDefinition(t, `
[[gate.steps]]
name = "broken"
`)

		_, err := pipeline.Load(path)
		gt.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := pipeline.Load(filepath.Join(t.TempDir(), "absent.toml"))
		gt.Error(t, err)
	})
}

func TestPublishPipeline(t *testing.T) {
	def := pipeline.Default()
	image := model.ImageRef{Registry: "docker.io", Username: "itamhack", Service: "hack-service"}

	p := def.PublishPipeline(image, "registry-token")

	gt.V(t, len(p.Steps)).Equal(3)
	gt.V(t, p.Steps[0].Name).Equal("registry-login")
	gt.V(t, p.Steps[1].Name).Equal("image-build")
	gt.V(t, p.Steps[2].Name).Equal("image-push")

	// Token goes via stdin only, never into arguments
	gt.V(t, p.Steps[0].Stdin).Equal("registry-token")
	for _, step := range p.Steps {
		for _, arg := range step.Args {
			gt.V(t, arg).NotEqual("registry-token")
		}
	}

	// Build and push reference the fixed tag
	tag := "docker.io/itamhack/hack-service:latest"
	gt.V(t, p.Steps[1].Args[len(p.Steps[1].Args)-2]).Equal(tag)
	gt.V(t, p.Steps[2].Args[len(p.Steps[2].Args)-1]).Equal(tag)
}

func TestPublishPipeline_PreSteps(t *testing.T) {
	def := pipeline.Default()
	def.Publish.Steps = []pipeline.StepDef{
		{Name: "build-assets", Command: "make", Args: []string{"assets"}},
	}
	image := model.ImageRef{Username: "u", Service: "s"}

	p := def.PublishPipeline(image, "token")

	gt.V(t, len(p.Steps)).Equal(4)
	gt.V(t, p.Steps[0].Name).Equal("build-assets")
	gt.V(t, p.Steps[1].Name).Equal("registry-login")
}
