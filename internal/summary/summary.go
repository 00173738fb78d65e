package summary

import (
	"sort"

	"tscproj/internal/project"
	"tscproj/internal/timing"
	"tscproj/internal/tree"
)

const (
	// DefaultFrameRate applies when a document has no videoFormatFrameRate.
	DefaultFrameRate = 30
	// DefaultEditRate applies when a document has no editRate.
	DefaultEditRate = 30

	simpleBelow   = 50
	moderateBelow = 150

	largeMediaBin = 100
	manyTracks    = 20
)

// Complexity levels.
const (
	LevelSimple   = "Simple"
	LevelModerate = "Moderate"
	LevelComplex  = "Complex"
)

// Canvas is the project output geometry.
type Canvas struct {
	Width     float64 `json:"width" yaml:"width"`
	Height    float64 `json:"height" yaml:"height"`
	FrameRate int64   `json:"frame_rate" yaml:"frame_rate"`
	EditRate  int64   `json:"edit_rate" yaml:"edit_rate"`
}

// TypeCount is a count of items sharing a type name.
type TypeCount struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

// Media summarizes the source catalog. Entries are counted as declared; the
// files they reference are not inspected.
type Media struct {
	Total  int         `json:"total" yaml:"total"`
	ByType []TypeCount `json:"by_type" yaml:"by_type"`
}

// Timeline summarizes the arrangement of clips.
type Timeline struct {
	Scenes     int         `json:"scenes" yaml:"scenes"`
	Tracks     int         `json:"tracks" yaml:"tracks"`
	Clips      int         `json:"clips" yaml:"clips"`
	Effects    int         `json:"effects" yaml:"effects"`
	Markers    int         `json:"markers" yaml:"markers"`
	TrackTypes []TypeCount `json:"track_types" yaml:"track_types"`
	End        string      `json:"end" yaml:"end"`
	EndSeconds float64     `json:"end_seconds" yaml:"end_seconds"`
}

// Complexity rates how much work a project is to edit.
type Complexity struct {
	Score float64 `json:"score" yaml:"score"`
	Level string  `json:"level" yaml:"level"`
}

// Summary is the result of Analyze.
type Summary struct {
	Title           string           `json:"title" yaml:"title"`
	Path            string           `json:"path,omitempty" yaml:"path,omitempty"`
	Version         string           `json:"version" yaml:"version"`
	Schema          string           `json:"schema" yaml:"schema"`
	Features        project.Features `json:"features" yaml:"features"`
	Canvas          Canvas           `json:"canvas" yaml:"canvas"`
	Media           Media            `json:"media" yaml:"media"`
	Timeline        Timeline         `json:"timeline" yaml:"timeline"`
	Complexity      Complexity       `json:"complexity" yaml:"complexity"`
	Recommendations []string         `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	Warnings        []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Analyze summarizes doc. path is used only for the title and may be empty.
func Analyze(doc *project.Document, path string) Summary {
	s := Summary{
		Title:    Title(path),
		Path:     path,
		Version:  doc.Version.String(),
		Schema:   doc.Version.Schema.String(),
		Features: doc.Version.Features(),
		Canvas:   canvasOf(doc),
	}
	for _, w := range doc.Warnings {
		s.Warnings = append(s.Warnings, w.String())
	}

	s.Media = mediaOf(doc.Root)
	s.Timeline = timelineOf(doc, s.Canvas)
	s.Complexity = Rate(s.Timeline.Tracks, s.Timeline.Clips, s.Timeline.Effects, s.Media.Total)
	s.Recommendations = recommend(s)
	return s
}

// Rate computes the complexity score for the given counts.
func Rate(tracks, clips, effects, sources int) Complexity {
	score := float64(tracks) + float64(clips)*2 + float64(effects)*3 + float64(sources)*0.5
	level := LevelComplex
	switch {
	case score < simpleBelow:
		level = LevelSimple
	case score < moderateBelow:
		level = LevelModerate
	}
	return Complexity{Score: score, Level: level}
}

func canvasOf(doc *project.Document) Canvas {
	c := Canvas{FrameRate: DefaultFrameRate, EditRate: DefaultEditRate}
	c.Width, _ = doc.Root.Float("width")
	c.Height, _ = doc.Root.Float("height")
	if fr, ok := doc.Root.Float("videoFormatFrameRate"); ok && fr >= 1 {
		c.FrameRate = int64(fr)
	}
	if doc.Version.EditRate > 0 {
		c.EditRate = doc.Version.EditRate
	}
	return c
}

// sources returns the catalog entries of either layout.
func sources(root *tree.Mapping) []*tree.Mapping {
	node, ok := root.Get("sourceBin")
	if !ok {
		return nil
	}
	var list *tree.Sequence
	switch bin := node.(type) {
	case *tree.Sequence:
		list = bin
	case *tree.Mapping:
		list, _ = bin.Sequence("sources")
	}
	return mappings(list)
}

func mediaOf(root *tree.Mapping) Media {
	var m Media
	counts := map[string]int{}
	for _, src := range sources(root) {
		m.Total++
		typ, ok := src.Text("_type")
		if !ok {
			typ = "Unknown"
		}
		counts[typ]++
	}
	m.ByType = sortedCounts(counts)
	return m
}

func timelineOf(doc *project.Document, canvas Canvas) Timeline {
	var t Timeline
	counts := map[string]int{}
	var end float64
	for _, scene := range scenes(doc.Root) {
		t.Scenes++
		for _, track := range tracksOf(scene) {
			t.Tracks++
			counts[trackType(track)]++
			clips, effects, trackEnd := walkClips(track)
			t.Clips += clips
			t.Effects += effects
			if trackEnd > end {
				end = trackEnd
			}
		}
	}
	t.TrackTypes = sortedCounts(counts)
	t.Markers = len(Markers(doc))
	if fs, err := timing.FromTicks(end, canvas.EditRate, canvas.FrameRate); err == nil {
		t.End = fs.String()
		t.EndSeconds = fs.Seconds()
	}
	return t
}

// scenes accepts both timeline.sceneTrack.scenes and timeline.scenes.
func scenes(root *tree.Mapping) []*tree.Mapping {
	timeline, ok := root.Mapping("timeline")
	if !ok {
		return nil
	}
	if st, ok := timeline.Mapping("sceneTrack"); ok {
		if list, ok := st.Sequence("scenes"); ok {
			return mappings(list)
		}
	}
	list, _ := timeline.Sequence("scenes")
	return mappings(list)
}

// tracksOf returns the tracks of a scene. A scene that holds clips directly
// is treated as a single track.
func tracksOf(scene *tree.Mapping) []*tree.Mapping {
	if csml, ok := scene.Mapping("csml"); ok {
		scene = csml
	}
	if list, ok := scene.Sequence("tracks"); ok {
		return mappings(list)
	}
	if scene.Has("medias") {
		return []*tree.Mapping{scene}
	}
	return nil
}

func trackType(track *tree.Mapping) string {
	if typ, ok := track.Text("trackType"); ok && typ != "" {
		return typ
	}
	if medias, ok := track.Sequence("medias"); ok {
		if clips := mappings(medias); len(clips) > 0 {
			if typ, ok := clips[0].Text("_type"); ok {
				return typ
			}
		}
	}
	return "Unknown"
}

// walkClips counts clips and effects on a track, descending into groups, and
// returns the latest clip end in ticks.
func walkClips(track *tree.Mapping) (clips, effects int, end float64) {
	medias, _ := track.Sequence("medias")
	for _, clip := range mappings(medias) {
		clips++
		if list, ok := clip.Sequence("effects"); ok {
			effects += list.Len()
		}
		start, _ := clip.Float("start")
		dur, _ := clip.Float("duration")
		if start+dur > end {
			end = start + dur
		}
		if inner, ok := clip.Sequence("tracks"); ok {
			for _, t := range mappings(inner) {
				c, e, _ := walkClips(t)
				clips += c
				effects += e
			}
		}
	}
	return clips, effects, end
}

func recommend(s Summary) []string {
	var out []string
	if s.Media.Total > largeMediaBin {
		out = append(out, "Large media bin, consider organizing media")
	}
	if s.Complexity.Level == LevelComplex {
		out = append(out, "Complex project, consider splitting it into scenes")
	}
	if s.Timeline.Tracks > manyTracks {
		out = append(out, "Many tracks, consider consolidating similar content")
	}
	return out
}

func mappings(list *tree.Sequence) []*tree.Mapping {
	if list == nil {
		return nil
	}
	out := make([]*tree.Mapping, 0, list.Len())
	for _, item := range list.Items() {
		if m, ok := item.(*tree.Mapping); ok {
			out = append(out, m)
		}
	}
	return out
}

func sortedCounts(counts map[string]int) []TypeCount {
	out := make([]TypeCount, 0, len(counts))
	for typ, n := range counts {
		out = append(out, TypeCount{Type: typ, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
