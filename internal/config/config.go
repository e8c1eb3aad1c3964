package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the optional settings file looked up in the working
// directory. When it does not exist the built-in defaults are used.
const DefaultFile = ".fwsetup.yaml"

// Settings represents the .fwsetup.yaml configuration file.
type Settings struct {
	// Tool configuration (the pinned binwalk release to build from)
	Tool ToolSettings `yaml:"tool"`

	// Image configuration
	Image ImageSettings `yaml:"image"`

	// Python environment configuration
	Python PythonSettings `yaml:"python"`
}

// ToolSettings pins the analysis tool release that gets downloaded and built.
type ToolSettings struct {
	Version    string `yaml:"version"`
	ArchiveURL string `yaml:"archive_url,omitempty"`
	SHA256     string `yaml:"sha256,omitempty"`
}

// ImageSettings holds container image settings.
type ImageSettings struct {
	Tag        string `yaml:"tag"`
	Dockerfile string `yaml:"dockerfile,omitempty"`
}

// PythonSettings holds virtualenv and dependency manifest settings.
type PythonSettings struct {
	VenvDir  string `yaml:"venv_dir"`
	Manifest string `yaml:"manifest"`
}

// Load reads and parses the settings file. A missing file is not an
// error: the defaults describe a complete, usable setup.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewDefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	settings.applyDefaults()

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &settings, nil
}

// Save writes the settings to a file.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// Validate checks if the settings are usable.
func (s *Settings) Validate() error {
	if s.Tool.Version == "" {
		return fmt.Errorf("tool.version is required")
	}
	if strings.HasPrefix(s.Tool.Version, "v") {
		return fmt.Errorf("tool.version must not carry a 'v' prefix: %s", s.Tool.Version)
	}

	if s.Image.Tag == "" {
		return fmt.Errorf("image.tag is required")
	}

	if s.Python.VenvDir == "" {
		return fmt.Errorf("python.venv_dir is required")
	}
	if s.Python.Manifest == "" {
		return fmt.Errorf("python.manifest is required")
	}

	return nil
}

// applyDefaults sets default values for missing fields.
func (s *Settings) applyDefaults() {
	if s.Tool.Version == "" {
		s.Tool.Version = "3.1.0"
	}
	if s.Image.Tag == "" {
		s.Image.Tag = "binwalkv3"
	}
	if s.Image.Dockerfile == "" {
		s.Image.Dockerfile = "Dockerfile"
	}
	if s.Python.VenvDir == "" {
		s.Python.VenvDir = ".venv"
	}
	if s.Python.Manifest == "" {
		s.Python.Manifest = "requirements.txt"
	}
}

// ArchiveURL returns the download URL of the pinned source archive.
func (s *Settings) ArchiveURL() string {
	if s.Tool.ArchiveURL != "" {
		return s.Tool.ArchiveURL
	}
	return fmt.Sprintf("https://github.com/ReFirmLabs/binwalk/archive/refs/tags/v%s.tar.gz", s.Tool.Version)
}

// ArchiveName returns the local filename the archive is saved under.
func (s *Settings) ArchiveName() string {
	return fmt.Sprintf("binwalk-%s.tar.gz", s.Tool.Version)
}

// SourceDir returns the directory name the archive extracts into.
// GitHub release tarballs unpack as <repo>-<version>/.
func (s *Settings) SourceDir() string {
	return fmt.Sprintf("binwalk-%s", s.Tool.Version)
}

// NewDefaultSettings creates settings describing the stock environment.
func NewDefaultSettings() *Settings {
	return &Settings{
		Tool: ToolSettings{
			Version: "3.1.0",
		},
		Image: ImageSettings{
			Tag:        "binwalkv3",
			Dockerfile: "Dockerfile",
		},
		Python: PythonSettings{
			VenvDir:  ".venv",
			Manifest: "requirements.txt",
		},
	}
}
