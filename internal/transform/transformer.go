package transform

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"tscproj/internal/logging"
	"tscproj/internal/project"
	"tscproj/internal/tree"
)

// Kind selects which quantities a transform rescales.
type Kind int

const (
	Spatial Kind = iota + 1
	Temporal
)

func (k Kind) String() string {
	switch k {
	case Spatial:
		return "spatial"
	case Temporal:
		return "temporal"
	default:
		return "unknown"
	}
}

// ParseKind converts "spatial"/"xy" or "temporal"/"time" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spatial", "xy", "xyscale":
		return Spatial, nil
	case "temporal", "time", "timescale":
		return Temporal, nil
	default:
		return 0, fmt.Errorf("unknown transform kind %q", s)
	}
}

// DefaultAudioTypes are the clip types treated as audio when Options.AudioTypes is empty.
var DefaultAudioTypes = []string{"AMFile"}

// Options configure a Transformer.
type Options struct {
	Kind   Kind
	Factor float64
	// PreserveAudioDuration keeps the duration of audio clips fixed during a
	// temporal transform. Their start positions still move.
	PreserveAudioDuration bool
	// AudioTypes lists clip _type values treated as audio.
	AudioTypes []string
	// InPlace mutates the input document instead of a copy.
	InPlace bool
}

// Stats counts what a transform touched.
type Stats struct {
	Spatial         int `json:"spatial" yaml:"spatial"`
	Temporal        int `json:"temporal" yaml:"temporal"`
	KeyframeEntries int `json:"keyframe_entries" yaml:"keyframe_entries"`
	AudioPreserved  int `json:"audio_preserved" yaml:"audio_preserved"`
	Skipped         int `json:"skipped" yaml:"skipped"`
}

// Result is the outcome of a successful transform.
type Result struct {
	Document *project.Document
	Warnings []project.Warning
	Stats    Stats
}

// Transformer rescales documents. A Transformer holds no per-document state
// and may be reused across documents sequentially or concurrently.
type Transformer struct {
	opts       Options
	audioTypes map[string]bool
	logger     *slog.Logger
}

// New validates opts and returns a Transformer.
func New(opts Options, logger *slog.Logger) (*Transformer, error) {
	if err := validateFactor(opts.Factor); err != nil {
		return nil, err
	}
	if opts.Kind != Spatial && opts.Kind != Temporal {
		return nil, fmt.Errorf("transform kind must be spatial or temporal, got %d", opts.Kind)
	}
	types := opts.AudioTypes
	if len(types) == 0 {
		types = DefaultAudioTypes
	}
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	opts.AudioTypes = append([]string(nil), types...)
	return &Transformer{
		opts:       opts,
		audioTypes: set,
		logger:     logging.NewComponentLogger(logger, "transform"),
	}, nil
}

// Options returns the options the transformer was built with.
func (t *Transformer) Options() Options { return t.opts }

func validateFactor(f float64) error {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return &InvalidFactorError{Factor: f}
	}
	return nil
}

// Transform rescales doc. Unless Options.InPlace is set, doc is left untouched
// and the result holds a new document. Fatal errors leave doc unchanged.
func (t *Transformer) Transform(doc *project.Document) (*Result, error) {
	if err := validateFactor(t.opts.Factor); err != nil {
		return nil, err
	}
	if doc == nil || doc.Root == nil {
		return nil, errors.New("transform: nil document")
	}
	timeline, ok := doc.Root.Get("timeline")
	if !ok {
		return nil, &project.MalformedDocumentError{Path: tree.Path{}.Key("timeline"), Reason: "required subtree is missing"}
	}
	if _, ok := timeline.(*tree.Mapping); !ok {
		return nil, &project.MalformedDocumentError{Path: tree.Path{}.Key("timeline"), Reason: "must be an object"}
	}

	target := doc
	if !t.opts.InPlace {
		target = doc.Clone()
	}

	w := &walker{
		kind:          t.opts.Kind,
		factor:        t.opts.Factor,
		table:         TableFor(target.Version.Schema),
		preserveAudio: t.opts.PreserveAudioDuration && t.opts.Kind == Temporal,
		audioTypes:    t.audioTypes,
	}
	w.mapping(tree.Path{}, target.Root, scope{ctx: ContextRoot, zone: ZoneRoot})

	t.logger.Debug("transform applied",
		logging.String("kind", t.opts.Kind.String()),
		logging.Float64("factor", t.opts.Factor),
		logging.String("schema", target.Version.Schema.String()),
		logging.Int("spatial", w.stats.Spatial),
		logging.Int("temporal", w.stats.Temporal),
		logging.Int("keyframe_entries", w.stats.KeyframeEntries),
		logging.Int("audio_preserved", w.stats.AudioPreserved),
		logging.Int("warnings", len(w.warnings)),
	)

	return &Result{Document: target, Warnings: w.warnings, Stats: w.stats}, nil
}
