package release

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Manifest is the project file carrying the version identifier
type Manifest interface {
	// Path returns the manifest location relative to the project root
	Path() string
	// Kind names the manifest format for display
	Kind() string
	// Version reads the current version
	Version() (string, error)
	// SetVersion rewrites the manifest with the new version
	SetVersion(version string) error
}

// manifestProbes lists recognized manifests in detection order
var manifestProbes = []string{"package.json", "pyproject.toml", "Cargo.toml", "VERSION"}

// DetectManifest finds the version manifest in the project root
func DetectManifest(root string) (Manifest, error) {
	for _, name := range manifestProbes {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return OpenManifest(path)
		}
	}
	return nil, fmt.Errorf("no version manifest found in %s (looked for %s)",
		root, strings.Join(manifestProbes, ", "))
}

// OpenManifest opens a manifest by path, inferring its format from the file name
func OpenManifest(path string) (Manifest, error) {
	switch filepath.Base(path) {
	case "package.json":
		return &jsonManifest{path: path}, nil
	case "pyproject.toml":
		return &tomlManifest{path: path, table: "project", kind: "pyproject.toml"}, nil
	case "Cargo.toml":
		return &tomlManifest{path: path, table: "package", kind: "Cargo.toml"}, nil
	case "VERSION":
		return &fileManifest{path: path}, nil
	default:
		return nil, fmt.Errorf("unrecognized manifest: %s", path)
	}
}

// jsonManifest bumps the top-level "version" field of package.json in place,
// preserving the rest of the document byte for byte
type jsonManifest struct {
	path string
}

func (m *jsonManifest) Path() string { return m.path }
func (m *jsonManifest) Kind() string { return "package.json" }

func (m *jsonManifest) Version() (string, error) {
	data, err := os.ReadFile(m.path) // #nosec G304 -- project manifest
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", m.path, err)
	}

	version := gjson.GetBytes(data, "version")
	if !version.Exists() {
		return "", fmt.Errorf("%s has no version field", m.path)
	}
	return version.String(), nil
}

func (m *jsonManifest) SetVersion(version string) error {
	data, err := os.ReadFile(m.path) // #nosec G304 -- project manifest
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", m.path, err)
	}

	updated, err := sjson.SetBytes(data, "version", version)
	if err != nil {
		return fmt.Errorf("failed to update version in %s: %w", m.path, err)
	}

	return writeManifest(m.path, updated)
}

// tomlManifest reads the version through go-toml and rewrites it with a
// targeted line edit so comments and formatting survive the bump
type tomlManifest struct {
	path  string
	table string
	kind  string
}

func (m *tomlManifest) Path() string { return m.path }
func (m *tomlManifest) Kind() string { return m.kind }

func (m *tomlManifest) Version() (string, error) {
	data, err := os.ReadFile(m.path) // #nosec G304 -- project manifest
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", m.path, err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", m.path, err)
	}

	table, ok := doc[m.table].(map[string]any)
	if !ok {
		return "", fmt.Errorf("%s has no [%s] table", m.path, m.table)
	}
	version, ok := table["version"].(string)
	if !ok {
		return "", fmt.Errorf("%s has no version in [%s]", m.path, m.table)
	}
	return version, nil
}

var versionLineRe = regexp.MustCompile(`^(\s*version\s*=\s*)"[^"]*"(.*)$`)

func (m *tomlManifest) SetVersion(version string) error {
	data, err := os.ReadFile(m.path) // #nosec G304 -- project manifest
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", m.path, err)
	}

	lines := strings.Split(string(data), "\n")
	section := ""
	replaced := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = strings.Trim(trimmed, "[]")
			continue
		}
		if section != m.table || replaced {
			continue
		}
		if match := versionLineRe.FindStringSubmatch(line); match != nil {
			lines[i] = fmt.Sprintf(`%s"%s"%s`, match[1], version, match[2])
			replaced = true
		}
	}

	if !replaced {
		return fmt.Errorf("no version line found in [%s] of %s", m.table, m.path)
	}

	return writeManifest(m.path, []byte(strings.Join(lines, "\n")))
}

// fileManifest is a plain VERSION file holding nothing but the version
type fileManifest struct {
	path string
}

func (m *fileManifest) Path() string { return m.path }
func (m *fileManifest) Kind() string { return "VERSION" }

func (m *fileManifest) Version() (string, error) {
	data, err := os.ReadFile(m.path) // #nosec G304 -- project manifest
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", m.path, err)
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", fmt.Errorf("%s is empty", m.path)
	}
	return version, nil
}

func (m *fileManifest) SetVersion(version string) error {
	return writeManifest(m.path, []byte(version+"\n"))
}

func writeManifest(path string, data []byte) error {
	info, err := os.Stat(path)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
