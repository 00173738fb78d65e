package summary

import (
	"sort"

	"tscproj/internal/project"
	"tscproj/internal/timing"
	"tscproj/internal/tree"
)

// TrackRow describes one timeline track.
type TrackRow struct {
	Index    int    `json:"index" yaml:"index"`
	Scene    int    `json:"scene" yaml:"scene"`
	Type     string `json:"type" yaml:"type"`
	Clips    int    `json:"clips" yaml:"clips"`
	Effects  int    `json:"effects" yaml:"effects"`
	Duration string `json:"duration" yaml:"duration"`
}

// Marker kinds.
const (
	MarkerTimeline = "marker"
	MarkerTOC      = "toc"
)

// MarkerRow describes one timeline marker or table-of-contents entry.
type MarkerRow struct {
	Name    string  `json:"name" yaml:"name"`
	Kind    string  `json:"kind" yaml:"kind"`
	Time    string  `json:"time" yaml:"time"`
	Seconds float64 `json:"seconds" yaml:"seconds"`
}

// Tracks lists every track in scene order.
func Tracks(doc *project.Document) []TrackRow {
	canvas := canvasOf(doc)
	var rows []TrackRow
	for si, scene := range scenes(doc.Root) {
		for _, track := range tracksOf(scene) {
			clips, effects, end := walkClips(track)
			row := TrackRow{
				Index:   len(rows) + 1,
				Scene:   si + 1,
				Type:    trackType(track),
				Clips:   clips,
				Effects: effects,
			}
			if fs, err := timing.FromTicks(end, canvas.EditRate, canvas.FrameRate); err == nil {
				row.Duration = fs.String()
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// Markers lists timeline markers and table-of-contents keyframes ordered by
// time.
func Markers(doc *project.Document) []MarkerRow {
	timeline, ok := doc.Root.Mapping("timeline")
	if !ok {
		return nil
	}
	canvas := canvasOf(doc)
	var rows []MarkerRow
	add := func(name, kind string, ticks float64) {
		fs, err := timing.FromTicks(ticks, canvas.EditRate, canvas.FrameRate)
		if err != nil {
			return
		}
		rows = append(rows, MarkerRow{Name: name, Kind: kind, Time: fs.String(), Seconds: fs.Seconds()})
	}

	if list, ok := timeline.Sequence("markers"); ok {
		for _, m := range mappings(list) {
			name, ok := m.Text("name")
			if !ok {
				name = "Unnamed"
			}
			t, _ := m.Float("time")
			add(name, MarkerTimeline, t)
		}
	}
	for _, kf := range tocKeyframes(timeline) {
		name, ok := kf.Text("value")
		if !ok {
			name = "Unnamed"
		}
		t, _ := kf.Float("time")
		add(name, MarkerTOC, t)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Seconds < rows[j].Seconds })
	return rows
}

func tocKeyframes(timeline *tree.Mapping) []*tree.Mapping {
	params, ok := timeline.Mapping("parameters")
	if !ok {
		return nil
	}
	toc, ok := params.Mapping("toc")
	if !ok {
		return nil
	}
	list, _ := toc.Sequence("keyframes")
	return mappings(list)
}
