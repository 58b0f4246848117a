//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CreateTestWorkspace creates a temporary directory that becomes $HOME and
// the working directory of the app
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	return tmpDir, nil
}

// configOptions holds the optional parts of a generated config
type configOptions struct {
	endpoint string
	types    []string
	source   string
	extra    string
}

// ConfigOption is a function that configures config creation
type ConfigOption func(*configOptions)

// WithSearch enables remote search against endpoint
func WithSearch(endpoint string, types ...string) ConfigOption {
	return func(opts *configOptions) {
		opts.endpoint = endpoint
		opts.types = types
	}
}

// WithLinkSource enables the link harvester on an HTML page
func WithLinkSource(path string) ConfigOption {
	return func(opts *configOptions) {
		opts.source = path
	}
}

// WithExtraItems appends raw TOML to the config
func WithExtraItems(toml string) ConfigOption {
	return func(opts *configOptions) {
		opts.extra = toml
	}
}

const baseItems = `
[[items]]
icon = "🏠"
name = "Home"
subtitle = "Go to the home page"
action = "/home"

[[items]]
icon = "⚙️"
name = "Settings"
subtitle = "Application settings"
action = "/settings"

[[items]]
icon = "📧"
name = "Contact Us"
subtitle = "Send an email"
action = "mailto:contact@example.com"

[[items]]
icon = "🧹"
name = "Clear recent items"
command = "palette.clear-recent"
`

// WriteConfig writes cmdpalette.toml into the workspace and returns its path
func (tf *TUITestFramework) WriteConfig(options ...ConfigOption) (string, error) {
	if tf.workspace == "" {
		return "", fmt.Errorf("workspace not created")
	}
	opts := &configOptions{}
	for _, opt := range options {
		opt(opts)
	}

	var b strings.Builder
	b.WriteString("locale = \"en\"\n")
	b.WriteString("baseUrl = \"https://app.example.com\"\n")
	b.WriteString("maxRecentItems = 3\n")
	if opts.source != "" {
		b.WriteString("enableLinksScraper = true\n")
		fmt.Fprintf(&b, "linkScraperSource = %q\n", opts.source)
		b.WriteString("linkScraperExcludeSelectors = [\"nav\"]\n")
	}
	b.WriteString("\n[recent]\nstore = \"file\"\n")
	if opts.endpoint != "" {
		b.WriteString("\n[externalSearch]\n")
		fmt.Fprintf(&b, "endpoint = %q\n", opts.endpoint)
		quoted := make([]string, len(opts.types))
		for i, t := range opts.types {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		fmt.Fprintf(&b, "types = [%s]\n", strings.Join(quoted, ", "))
		b.WriteString("minChars = 2\ntimeoutMs = 50\n")
	}
	b.WriteString(baseItems)
	b.WriteString(opts.extra)

	path := filepath.Join(tf.workspace, "cmdpalette.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// WriteFile writes a file into the workspace and returns its path
func (tf *TUITestFramework) WriteFile(name, contents string) (string, error) {
	if tf.workspace == "" {
		return "", fmt.Errorf("workspace not created")
	}
	path := filepath.Join(tf.workspace, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}
