package remote

import "fmt"

// Config selects and parameterizes a transport strategy. It is persisted
// locally alongside, but separately from, the league document.
type Config struct {
	// Type is the active strategy. Empty means sync is disabled.
	Type Type `json:"type,omitempty"`

	// League names the remote row or document. Defaults to "default".
	League string `json:"league,omitempty"`

	// DatabaseURL is the Postgres connection string (cloud strategy).
	DatabaseURL string `json:"databaseUrl,omitempty"`

	// Owner, Repo, Path and Branch locate the document in a source
	// repository (gitstore strategy). Path defaults to league-state.json
	// at the repository root; Branch defaults to the repo default.
	Owner  string `json:"owner,omitempty"`
	Repo   string `json:"repo,omitempty"`
	Path   string `json:"path,omitempty"`
	Branch string `json:"branch,omitempty"`

	// Token is the opaque credential for the gitstore API.
	Token string `json:"token,omitempty"`

	// FilePath is the user-selected file acting as the remote
	// (sharefile strategy).
	FilePath string `json:"filePath,omitempty"`
}

// LeagueName returns the configured league, defaulting to "default".
func (c *Config) LeagueName() string {
	if c == nil || c.League == "" {
		return "default"
	}
	return c.League
}

// Enabled reports whether a strategy is configured at all.
func (c *Config) Enabled() bool {
	return c != nil && c.Type != ""
}

// Validate checks that the fields required by the selected strategy are
// present.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	switch c.Type {
	case TypeCloud:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: cloud strategy requires a database URL", ErrNotConfigured)
		}
	case TypeGitStore:
		if c.Owner == "" || c.Repo == "" {
			return fmt.Errorf("%w: gitstore strategy requires owner and repo", ErrNotConfigured)
		}
	case TypeShareFile:
		if c.FilePath == "" {
			return fmt.Errorf("%w: sharefile strategy requires a file path", ErrNotConfigured)
		}
	default:
		return fmt.Errorf("unknown remote strategy: %s", c.Type)
	}
	return nil
}
