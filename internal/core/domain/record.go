package domain

import "time"

// Action is what the orchestrator did for one source path.
type Action uint8

const (
	// ActionCompiled means the artifact was (re)built from source.
	ActionCompiled Action = iota
	// ActionLoaded means the existing artifact was current and was loaded.
	ActionLoaded
)

func (a Action) String() string {
	if a == ActionLoaded {
		return "loaded"
	}
	return "compiled"
}

// Reason explains a compile-vs-load decision.
type Reason uint8

const (
	ReasonCurrent Reason = iota
	ReasonMissing
	ReasonSourceNewer
	ReasonHashChanged
	ReasonUnreadable
	ReasonForced
)

func (r Reason) String() string {
	switch r {
	case ReasonCurrent:
		return "artifact is current"
	case ReasonMissing:
		return "artifact missing"
	case ReasonSourceNewer:
		return "source modified after artifact"
	case ReasonHashChanged:
		return "source content changed"
	case ReasonUnreadable:
		return "artifact unreadable"
	case ReasonForced:
		return "forced"
	default:
		return "unknown"
	}
}

// Decision is the staleness verdict for one source path.
type Decision struct {
	Action       Action
	Reason       Reason
	SourcePath   string
	ArtifactPath string
}

// CompilationRecord describes one compile or load.
type CompilationRecord struct {
	SourcePath       string
	ArtifactPath     string
	SourceHash       ContentHash
	SourceSize       int64
	ArtifactSize     int64
	PayloadSize      int64
	CompressionRatio float64
	Codec            Codec
	Route            Route
	Action           Action
	Reason           Reason
	CacheHit         bool
	ParseDuration    time.Duration
	CompileDuration  time.Duration
	WriteDuration    time.Duration
	Elapsed          time.Duration
	CompiledAt       time.Time
}

// BatchResult is the outcome for one path in a batch, tagged by that path.
type BatchResult struct {
	Path   string
	Record *CompilationRecord
	Err    error
}

// BatchStats aggregates a batch.
type BatchStats struct {
	Succeeded          int
	Failed             int
	Compiled           int
	Loaded             int
	TotalSourceBytes   int64
	TotalArtifactBytes int64
	AvgArtifactSize    float64
	Throughput         float64
	CacheHitRate       float64
	Elapsed            time.Duration
}

// BatchReport is the full result of a batch call.
type BatchReport struct {
	Results []BatchResult
	Stats   BatchStats
}

// Err returns the first error in the batch, if any.
func (r *BatchReport) Err() error {
	for _, res := range r.Results {
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}

// Cascade is the merge of every level file from the outermost directory down
// to the requested one. A key set by a deeper level replaces the value of a
// shallower one.
type Cascade struct {
	// Files are the level files, outermost first.
	Files []string
	// Keys are the merged keys in the order they first appear.
	Keys    []string
	Values  map[string]Value
	Origins map[string]string
	// Records holds one record per file, in the order of Files.
	Records []*CompilationRecord
}
