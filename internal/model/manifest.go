package model

// ManifestVersion is the schema version written into manifests.
const ManifestVersion = 1

// Manifest records the inputs and outputs of a build. It carries no
// timestamps so that unchanged inputs produce an identical manifest.
type Manifest struct {
	Version   int                `yaml:"version"`
	Artifacts []ManifestArtifact `yaml:"artifacts"`
}

// ManifestArtifact describes one generated artifact.
type ManifestArtifact struct {
	Pass   string          `yaml:"pass"`
	Output string          `yaml:"output"`
	SHA256 string          `yaml:"sha256"`
	Bytes  int64           `yaml:"bytes"`
	Inputs []ManifestInput `yaml:"inputs"`
}

// ManifestInput describes one input file of an artifact.
type ManifestInput struct {
	Path   string `yaml:"path"`
	SHA256 string `yaml:"sha256"`
}

// NewManifest builds a manifest from pass reports.
func NewManifest(reports []PassReport) Manifest {
	manifest := Manifest{Version: ManifestVersion}

	for _, report := range reports {
		artifact := ManifestArtifact{
			Pass:   report.Kind.String(),
			Output: string(report.Output),
			SHA256: report.SHA256,
			Bytes:  report.Bytes,
			Inputs: make([]ManifestInput, 0, len(report.Files)),
		}

		for _, file := range report.Files {
			artifact.Inputs = append(artifact.Inputs, ManifestInput{
				Path:   string(file.Path),
				SHA256: file.SHA256,
			})
		}

		manifest.Artifacts = append(manifest.Artifacts, artifact)
	}

	return manifest
}
