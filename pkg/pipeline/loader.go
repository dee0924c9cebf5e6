// Package pipeline loads the declarative pipeline definition file and
// provides the built-in step sequences used when no file is present.
package pipeline

import (
	"bytes"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
	"github.com/itam-hack/checkpoint/pkg/domain/types"
)

// StepDef is one step entry in checkpoint.toml
type StepDef struct {
	Name    string            `toml:"name"`
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env"`
	Dir     string            `toml:"dir"`
}

// GateDef configures the test gate pipeline
type GateDef struct {
	Steps []StepDef `toml:"steps"`
}

// PublishDef configures the build-and-publish pipeline
type PublishDef struct {
	Dockerfile string    `toml:"dockerfile"`
	Context    string    `toml:"context"`
	Steps      []StepDef `toml:"steps"` // pre-build steps
}

// Definition is the parsed pipeline definition file
type Definition struct {
	Timezone string     `toml:"timezone"`
	Gate     GateDef    `toml:"gate"`
	Publish  PublishDef `toml:"publish"`
}

// Default returns the built-in definition reproducing the original CI
// workflows: install dependencies and run the test harness for the
// gate, plain docker build for publish.
func Default() *Definition {
	return &Definition{
		Timezone: types.DefaultTimezone,
		Gate: GateDef{
			Steps: []StepDef{
				{Name: "install-deps", Command: "pip3", Args: []string{"install", "-r", "requirements.txt"}},
				{Name: "run-tests", Command: "pytest", Args: []string{"--tb=short"}},
			},
		},
		Publish: PublishDef{
			Dockerfile: "Dockerfile",
			Context:    ".",
		},
	}
}

// Load reads a definition file and overlays it on the defaults. Unknown
// fields are rejected so a typo in a step key fails loudly instead of
// silently skipping the step.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read pipeline definition", goerr.V("path", path))
	}

	def := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(def); err != nil {
		return nil, goerr.Wrap(err, "failed to parse pipeline definition", goerr.V("path", path))
	}

	if err := def.validate(); err != nil {
		return nil, err
	}

	return def, nil
}

func (d *Definition) validate() error {
	for _, s := range d.Gate.Steps {
		if s.Name == "" || s.Command == "" {
			return goerr.New("gate step requires name and command", goerr.V("step", s))
		}
	}
	for _, s := range d.Publish.Steps {
		if s.Name == "" || s.Command == "" {
			return goerr.New("publish step requires name and command", goerr.V("step", s))
		}
	}
	if len(d.Gate.Steps) == 0 {
		return goerr.New("gate pipeline has no steps")
	}
	return nil
}

// GatePipeline builds the gate step sequence. The configured timezone is
// exported as TZ to every step, standing in for the original workflow's
// host timezone setup.
func (d *Definition) GatePipeline() *model.Pipeline {
	p := &model.Pipeline{Name: string(model.TriggerGate)}
	for _, s := range d.Gate.Steps {
		p.Steps = append(p.Steps, d.toStep(s))
	}
	return p
}

// PublishPipeline builds the publish step sequence: optional pre-build
// steps, registry login, image build from the build descriptor, push.
// The registry token travels via stdin and never appears in arguments.
func (d *Definition) PublishPipeline(image model.ImageRef, token string) *model.Pipeline {
	p := &model.Pipeline{Name: string(model.TriggerPublish)}
	for _, s := range d.Publish.Steps {
		p.Steps = append(p.Steps, d.toStep(s))
	}

	registry := image.Registry
	if registry == "" {
		registry = types.DefaultRegistryHost
	}
	tag := image.Tag()

	p.Steps = append(p.Steps,
		model.Step{
			Name:    "registry-login",
			Command: "docker",
			Args:    []string{"login", registry, "--username", image.Username, "--password-stdin"},
			Env:     d.stepEnv(nil),
			Stdin:   token,
		},
		model.Step{
			Name:    "image-build",
			Command: "docker",
			Args:    []string{"build", "-f", d.Publish.Dockerfile, "-t", tag, d.Publish.Context},
			Env:     d.stepEnv(nil),
		},
		model.Step{
			Name:    "image-push",
			Command: "docker",
			Args:    []string{"push", tag},
			Env:     d.stepEnv(nil),
		},
	)
	return p
}

func (d *Definition) toStep(s StepDef) model.Step {
	return model.Step{
		Name:    s.Name,
		Command: s.Command,
		Args:    s.Args,
		Env:     d.stepEnv(s.Env),
		Dir:     s.Dir,
	}
}

func (d *Definition) stepEnv(extra map[string]string) map[string]string {
	env := map[string]string{"TZ": d.Timezone}
	for k, v := range extra {
		env[k] = v
	}
	return env
}
