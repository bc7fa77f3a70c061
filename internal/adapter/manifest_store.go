package adapter

import (
	"context"
	"fmt"

	m "amalgam.dev/pkg/amalgam/internal/model"
	"gopkg.in/yaml.v3"
)

// ManifestStore persists build manifests.
type ManifestStore interface {
	// StageManifest writes manifest into an uncommitted artifact at path so it
	// can be committed together with the artifacts it describes.
	StageManifest(ctx context.Context, path m.Path, manifest m.Manifest) (Artifact, error)
}

type yamlManifestStore struct {
	fsAdapter SourceFSAdapter
}

// NewManifestStore returns a ManifestStore writing YAML through fsAdapter.
func NewManifestStore(fsAdapter SourceFSAdapter) ManifestStore {
	return &yamlManifestStore{fsAdapter: fsAdapter}
}

func (s *yamlManifestStore) StageManifest(ctx context.Context, path m.Path, manifest m.Manifest) (Artifact, error) {
	content, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	artifact, err := s.fsAdapter.CreateArtifact(ctx, path)
	if err != nil {
		return nil, err
	}

	if _, err := artifact.Write(content); err != nil {
		_ = artifact.Abort()
		return nil, err
	}

	return artifact, nil
}
