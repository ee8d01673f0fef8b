package offline

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// bucketPrefix names cache generations. The version tag is appended,
// so every deploy that bumps the manifest version gets a fresh bucket.
const bucketPrefix = "swatchbook-static-"

// Manifest enumerates the static assets the worker precaches at install
// time. Bumping Version changes the bucket name, which makes the next
// activation evict every previous generation.
type Manifest struct {
	Version string   `yaml:"version"`
	Root    string   `yaml:"root"`
	Assets  []string `yaml:"assets"`
}

// DefaultManifest returns the built-in asset list used when no manifest
// file is deployed alongside the server.
func DefaultManifest() *Manifest {
	return &Manifest{
		Version: "1",
		Root:    "/",
		Assets: []string{
			"/",
			"/assets/app.css",
			"/assets/app.js",
			"/app.webmanifest",
			"/assets/icon-192.png",
		},
	}
}

// LoadManifest reads a manifest from a YAML file. A missing file is not
// an error; the built-in defaults apply. Fields left blank in the file
// fall back to their defaults as well.
func LoadManifest(path string) (*Manifest, error) {
	m := DefaultManifest()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read manifest file: %w", err)
	}

	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest file: %w", err)
	}

	if m.Version == "" {
		m.Version = DefaultManifest().Version
	}
	if m.Root == "" {
		m.Root = DefaultManifest().Root
	}
	if len(m.Assets) == 0 {
		m.Assets = DefaultManifest().Assets
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// BucketName returns the cache bucket name for this manifest's version.
func (m *Manifest) BucketName() string {
	return bucketPrefix + m.Version
}

// Paths returns the asset paths to precache. The root document is always
// included so the offline fallback has something to serve.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Assets)+1)
	seen := make(map[string]bool, len(m.Assets)+1)

	for _, p := range append([]string{m.Root}, m.Assets...) {
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}

	return paths
}

// validate rejects manifests whose entries are not same-origin absolute
// paths. Precaching a cross-origin URL would poison the bucket with
// responses the worker has no business serving.
func (m *Manifest) validate() error {
	for _, p := range append([]string{m.Root}, m.Assets...) {
		if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "://") {
			return fmt.Errorf("manifest asset %q is not a same-origin absolute path", p)
		}
	}
	return nil
}
