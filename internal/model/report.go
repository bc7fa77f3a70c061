package model

// FileStats counts what a pass did with a single input file.
type FileStats struct {
	Path           Path
	SHA256         string
	LinesRead      int
	BannerLines    int
	LocalIncludes  int
	GuardsKept     int
	GuardsReplaced int
	GuardsDropped  int
	LinesWritten   int
}

// PassReport summarizes one pass over a target.
type PassReport struct {
	Kind          PassKind
	Output        Path
	Files         []FileStats
	BannerEmitted bool
	GuardEmitted  bool
	Bytes         int64
	SHA256        string
}

// LinesWritten is the total of surviving input lines, excluding the banner and separators.
func (r PassReport) LinesWritten() int {
	total := 0
	for _, f := range r.Files {
		total += f.LinesWritten
	}

	return total
}

// CheckStatus is the outcome of comparing a rendered artifact with the one on disk.
type CheckStatus int

const (
	// UpToDate means the artifact on disk matches the rendered one byte for byte.
	UpToDate CheckStatus = iota
	// Stale means the artifact on disk differs.
	Stale
	// Missing means there is no artifact on disk.
	Missing
)

func (s CheckStatus) String() string {
	switch s {
	case UpToDate:
		return "up to date"
	case Stale:
		return "stale"
	case Missing:
		return "missing"
	default:
		return "unknown"
	}
}

// CheckResult is the freshness of one artifact.
type CheckResult struct {
	Kind   PassKind
	Output Path
	Status CheckStatus
	Diff   string
}
