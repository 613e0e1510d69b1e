package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileProvider resolves an owner's stored resume from a directory of
// <owner>.json files containing raw extracted fields.
type FileProvider struct {
	dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// ResumeFor loads and normalizes the stored resume for the given owner.
func (p *FileProvider) ResumeFor(_ context.Context, owner string) (*ResumeProfile, error) {
	path := filepath.Join(p.dir, owner+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume for owner %q: %w", owner, err)
	}

	var raw RawResume
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing resume for owner %q: %w", owner, err)
	}

	return NormalizeResume(&raw)
}
