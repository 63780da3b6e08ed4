package catalog

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// Manifest is the serialized form of a resolved request.
type Manifest struct {
	RunID      string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Descriptor string   `json:"descriptor,omitempty" yaml:"descriptor,omitempty"`
	HardwareID string   `json:"hwid,omitempty" yaml:"hwid,omitempty"`
	Files      []string `json:"files" yaml:"files"`
	OS         string   `json:"os,omitempty" yaml:"os,omitempty"`
	OSAttr     string   `json:"os_attr,omitempty" yaml:"os_attr,omitempty"`
	Cached     bool     `json:"cached,omitempty" yaml:"cached,omitempty"`
}

// WriteManifest writes m as indented JSON.
func WriteManifest(w io.Writer, m Manifest) error {
	if m.Files == nil {
		m.Files = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// WriteManifestYAML writes m as YAML.
func WriteManifestYAML(w io.Writer, m Manifest) error {
	if m.Files == nil {
		m.Files = []string{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}
