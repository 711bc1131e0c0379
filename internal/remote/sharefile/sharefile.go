// Package sharefile implements the manual transport strategy: no network
// at all. The "remote" is either a file the user explicitly selects or a
// copy-pasteable share code, and fetch/push run synchronously when the
// user asks, never on a schedule.
package sharefile

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/remote"
)

// DefaultFileName is the suggested name for exported backups.
const DefaultFileName = "league-backup.json"

func init() {
	remote.Register(remote.TypeShareFile, New)
}

type adapter struct {
	path string
}

// New creates a sharefile adapter bound to the configured file path.
func New(cfg *remote.Config) (remote.Adapter, error) {
	return &adapter{path: cfg.FilePath}, nil
}

// Name implements remote.Adapter.
func (a *adapter) Name() remote.Type {
	return remote.TypeShareFile
}

// Fetch implements remote.Adapter. A missing file is remote.ErrNotFound.
func (a *adapter) Fetch(ctx context.Context) (*remote.Fetched, error) {
	data, err := os.ReadFile(a.path)
	if os.IsNotExist(err) {
		return nil, remote.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a.path, err)
	}

	doc, err := remote.DecodePayload(data)
	if err != nil {
		return nil, err
	}
	return &remote.Fetched{
		Document:  doc,
		UpdatedAt: doc.UpdatedAt,
		Token:     remote.ContentHash(data),
	}, nil
}

// Push implements remote.Adapter. The file is written as indented JSON so
// it stays readable and diffable.
func (a *adapter) Push(ctx context.Context, doc *league.Document, updatedAt int64) (string, error) {
	data, err := ExportBytes(doc, updatedAt)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(a.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(a.path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", a.path, err)
	}
	return remote.ContentHash(data), nil
}

// Close implements remote.Adapter.
func (a *adapter) Close() {}

// ExportBytes renders the portable document as indented JSON for file
// export.
func ExportBytes(doc *league.Document, updatedAt int64) ([]byte, error) {
	portable := doc.Portable()
	portable.UpdatedAt = updatedAt
	data, err := json.MarshalIndent(portable, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return append(data, '\n'), nil
}

// ImportFile reads a backup file and validates it before acceptance.
func ImportFile(path string) (*league.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return league.ParseDocument(data)
}

// EncodeCode renders the portable document as a single copy-pasteable
// share code: base64 over the JSON bytes.
func EncodeCode(doc *league.Document) (string, error) {
	data, err := json.Marshal(doc.Portable())
	if err != nil {
		return "", fmt.Errorf("failed to encode share code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeCode parses a share code back into a validated document. Raw JSON
// is tolerated as a fallback so a pasted un-encoded backup still imports.
func DecodeCode(code string) (*league.Document, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, league.ErrInvalidFormat
	}

	data, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		data = []byte(code)
	}
	return league.ParseDocument(data)
}
