package cloudrun

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Manifest is a Knative Service definition equivalent to the gcloud
// deploy invocation, for use with `gcloud run services replace`.
type Manifest struct {
	APIVersion string      `yaml:"apiVersion"`
	Kind       string      `yaml:"kind"`
	Metadata   Metadata    `yaml:"metadata"`
	Spec       ServiceSpec `yaml:"spec"`
}

type Metadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

type ServiceSpec struct {
	Template RevisionTemplate `yaml:"template"`
}

type RevisionTemplate struct {
	Spec RevisionSpec `yaml:"spec"`
}

type RevisionSpec struct {
	TimeoutSeconds int         `yaml:"timeoutSeconds"`
	Containers     []Container `yaml:"containers"`
}

type Container struct {
	Image     string    `yaml:"image"`
	Ports     []Port    `yaml:"ports"`
	Env       []EnvVar  `yaml:"env"`
	Resources Resources `yaml:"resources"`
}

type Port struct {
	ContainerPort int `yaml:"containerPort"`
}

type EnvVar struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type Resources struct {
	Limits map[string]string `yaml:"limits"`
}

// NewManifest renders deployment options as a Knative Service
func NewManifest(opts Options) *Manifest {
	return &Manifest{
		APIVersion: "serving.knative.dev/v1",
		Kind:       "Service",
		Metadata: Metadata{
			Name: opts.ServiceName,
		},
		Spec: ServiceSpec{
			Template: RevisionTemplate{
				Spec: RevisionSpec{
					TimeoutSeconds: opts.TimeoutSeconds,
					Containers: []Container{
						{
							Image: opts.ImageRef(),
							Ports: []Port{
								{ContainerPort: 8080},
							},
							Env: []EnvVar{
								{Name: "DIFFUSION_STEPS", Value: strconv.Itoa(opts.Params.DiffusionSteps)},
								{Name: "NUM_REPLICAS", Value: strconv.Itoa(opts.Params.NumReplicas)},
							},
							Resources: Resources{
								Limits: map[string]string{
									"memory": opts.Memory,
									"cpu":    opts.CPU,
								},
							},
						},
					},
				},
			},
		},
	}
}

// WriteManifest writes the Knative Service YAML to the given path
func WriteManifest(path string, opts Options) error {
	data, err := yaml.Marshal(NewManifest(opts))
	if err != nil {
		return fmt.Errorf("failed to render manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
