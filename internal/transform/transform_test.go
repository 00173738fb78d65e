package transform_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"tscproj/internal/failure"
	"tscproj/internal/project"
	"tscproj/internal/transform"
	"tscproj/internal/tree"
)

const scenario = `{"version":"9.0","timeline":{"scenes":[{"medias":[{"start":2.0,"duration":4.0,"rect":[10,20,100,50]}]}]},"sourceBin":{"sources":[]}}`

func load(t *testing.T, text string) *project.Document {
	t.Helper()
	doc, err := project.Load([]byte(text))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return doc
}

func run(t *testing.T, doc *project.Document, opts transform.Options) *transform.Result {
	t.Helper()
	tr, err := transform.New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := tr.Transform(doc)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	return res
}

func encode(t *testing.T, n tree.Node) string {
	t.Helper()
	out, err := tree.Encode(n, tree.EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return string(out)
}

// lookup follows a dotted path with [i] indices and returns the number there.
func lookup(t *testing.T, root *tree.Mapping, path string) float64 {
	t.Helper()
	var node tree.Node = root
	for _, part := range strings.Split(path, ".") {
		key := part
		var indices []int
		if i := strings.IndexByte(part, '['); i >= 0 {
			key = part[:i]
			for _, idx := range strings.Split(strings.TrimSuffix(part[i+1:], "]"), "][") {
				n := 0
				for _, c := range idx {
					n = n*10 + int(c-'0')
				}
				indices = append(indices, n)
			}
		}
		m, ok := node.(*tree.Mapping)
		if !ok {
			t.Fatalf("%s: %q is not reached through an object", path, key)
		}
		node, ok = m.Get(key)
		if !ok {
			t.Fatalf("%s: missing key %q", path, key)
		}
		for _, idx := range indices {
			node = node.(*tree.Sequence).At(idx)
		}
	}
	s, ok := node.(*tree.Scalar)
	if !ok {
		t.Fatalf("%s: not a scalar", path)
	}
	f, ok := s.Float()
	if !ok {
		t.Fatalf("%s: not a number", path)
	}
	return f
}

func TestScenarioSpatial(t *testing.T) {
	res := run(t, load(t, scenario), transform.Options{Kind: transform.Spatial, Factor: 2})
	got := encode(t, res.Document.Root)
	want := `{"version":"9.0","timeline":{"scenes":[{"medias":[{"start":2.0,"duration":4.0,"rect":[20.0,40.0,200.0,100.0]}]}]},"sourceBin":{"sources":[]}}`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
	if res.Stats.Spatial != 4 || res.Stats.Temporal != 0 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
}

func TestScenarioTemporal(t *testing.T) {
	res := run(t, load(t, scenario), transform.Options{Kind: transform.Temporal, Factor: 2})
	got := encode(t, res.Document.Root)
	want := `{"version":"9.0","timeline":{"scenes":[{"medias":[{"start":4.0,"duration":8.0,"rect":[10,20,100,50]}]}]},"sourceBin":{"sources":[]}}`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestInvalidFactorRejectedWithoutMutation(t *testing.T) {
	for _, factor := range []float64{0, -2.0, math.NaN(), math.Inf(1)} {
		_, err := transform.New(transform.Options{Kind: transform.Spatial, Factor: factor}, nil)
		var ife *transform.InvalidFactorError
		if !errors.As(err, &ife) {
			t.Fatalf("factor %v: expected InvalidFactorError, got %v", factor, err)
		}
		if failure.Kind(err) != "invalid_factor" {
			t.Fatalf("unexpected kind %q", failure.Kind(err))
		}
		if !strings.Contains(err.Error(), "must be positive") {
			t.Fatalf("unexpected message %q", err.Error())
		}
	}
}

func TestNonDestructiveByDefault(t *testing.T) {
	doc := load(t, scenario)
	before := encode(t, doc.Root)
	res := run(t, doc, transform.Options{Kind: transform.Temporal, Factor: 3})
	if encode(t, doc.Root) != before {
		t.Fatal("input document was mutated")
	}
	if res.Document == doc {
		t.Fatal("expected a new document")
	}

	res = run(t, doc, transform.Options{Kind: transform.Temporal, Factor: 3, InPlace: true})
	if res.Document != doc {
		t.Fatal("in-place transform must return the input document")
	}
	if lookup(t, doc.Root, "timeline.scenes[0].medias[0].start") != 6 {
		t.Fatal("in-place transform did not mutate the input")
	}
}

func TestIdentityFactorIsBitForBit(t *testing.T) {
	input := `{"version":"9.0","width":1920,"height":1080.50,"timeline":{"scenes":[{"medias":[{"start":0.1,"duration":1e3,"parameters":{"translation0":{"defaultValue":-12.25,"keyframes":[{"time":10,"value":3.0000}]}}}]}]},"sourceBin":{"sources":[{"rect":[0,0,1920,1080],"range":[0,100]}]}}`
	for _, kind := range []transform.Kind{transform.Spatial, transform.Temporal} {
		res := run(t, load(t, input), transform.Options{Kind: kind, Factor: 1})
		if got := encode(t, res.Document.Root); got != input {
			t.Fatalf("%s identity changed output\n got %s\nwant %s", kind, got, input)
		}
	}
}

func TestSpatialComposes(t *testing.T) {
	input := `{"version":"9.0","width":1920,"height":1080,"timeline":{"scenes":[{"medias":[{"parameters":{"translation0":13.7,"scale0":0.8}}]}]},"sourceBin":{"sources":[]}}`
	a, b := 1.7, 0.35

	twice := run(t, run(t, load(t, input), transform.Options{Kind: transform.Spatial, Factor: a}).Document,
		transform.Options{Kind: transform.Spatial, Factor: b})
	once := run(t, load(t, input), transform.Options{Kind: transform.Spatial, Factor: a * b})

	for _, path := range []string{"width", "height", "timeline.scenes[0].medias[0].parameters.translation0", "timeline.scenes[0].medias[0].parameters.scale0"} {
		x := lookup(t, twice.Document.Root, path)
		y := lookup(t, once.Document.Root, path)
		if math.Abs(x-y) > 1e-9*math.Max(1, math.Abs(y)) {
			t.Fatalf("%s: composed %v != direct %v", path, x, y)
		}
	}
}

const animated = `{"version":"9.0","timeline":{"scenes":[{"medias":[{"start":10,"duration":20,"parameters":{
	"translation0":{"type":"double","defaultValue":5,"keyframes":[{"time":0,"endTime":4,"value":5,"duration":4},{"time":4,"value":50}]},
	"opacity":{"defaultValue":1,"keyframes":[{"time":0,"value":0},{"time":6,"value":1}]},
	"rotation2":30
}}]}]},"sourceBin":{"sources":[]}}`

func TestKeyframeTimeValueDecoupling(t *testing.T) {
	temporal := run(t, load(t, animated), transform.Options{Kind: transform.Temporal, Factor: 2})
	root := temporal.Document.Root
	p := "timeline.scenes[0].medias[0].parameters."
	checks := map[string]float64{
		p + "translation0.keyframes[0].time":     0,
		p + "translation0.keyframes[0].endTime":  8,
		p + "translation0.keyframes[0].duration": 8,
		p + "translation0.keyframes[0].value":    5,
		p + "translation0.keyframes[1].time":     8,
		p + "translation0.keyframes[1].value":    50,
		p + "translation0.defaultValue":          5,
		p + "opacity.keyframes[1].time":          12,
		p + "opacity.keyframes[1].value":         1,
		p + "opacity.defaultValue":               1,
		p + "rotation2":                          30,
	}
	for path, want := range checks {
		if got := lookup(t, root, path); got != want {
			t.Fatalf("temporal %s = %v, want %v", path, got, want)
		}
	}
	if temporal.Stats.KeyframeEntries != 4 {
		t.Fatalf("keyframe entries = %d, want 4", temporal.Stats.KeyframeEntries)
	}

	spatial := run(t, load(t, animated), transform.Options{Kind: transform.Spatial, Factor: 2})
	root = spatial.Document.Root
	checks = map[string]float64{
		p + "translation0.keyframes[0].time":  0,
		p + "translation0.keyframes[1].time":  4,
		p + "translation0.keyframes[1].value": 100,
		p + "translation0.defaultValue":       10,
		p + "opacity.keyframes[1].value":      1,
		p + "opacity.keyframes[1].time":       6,
		p + "rotation2":                       30,
	}
	for path, want := range checks {
		if got := lookup(t, root, path); got != want {
			t.Fatalf("spatial %s = %v, want %v", path, got, want)
		}
	}
}

const audioProject = `{"version":"9.0","timeline":{"sceneTrack":{"scenes":[{"csml":{"tracks":[{"medias":[
	{"_type":"AMFile","start":100,"duration":50,"mediaStart":30,"mediaDuration":50},
	{"_type":"ScreenVMFile","start":10,"duration":30},
	{"_type":"UnifiedMedia","start":0,"duration":40,"video":{"_type":"ScreenVMFile","duration":40},"audio":{"_type":"AMFile","duration":40}}
]}]}}]}},"sourceBin":{"sources":[{"_type":"AMFile","duration":500,"start":0}]}}`

func TestAudioDurationPreservation(t *testing.T) {
	clips := "timeline.sceneTrack.scenes[0].csml.tracks[0].medias"

	res := run(t, load(t, audioProject), transform.Options{Kind: transform.Temporal, Factor: 2, PreserveAudioDuration: true})
	root := res.Document.Root
	checks := map[string]float64{
		clips + "[0].start":             200,
		clips + "[0].duration":          50,
		clips + "[0].mediaStart":        30,
		clips + "[0].mediaDuration":     50,
		clips + "[1].start":             20,
		clips + "[1].duration":          60,
		clips + "[2].duration":          80,
		clips + "[2].video.duration":    80,
		clips + "[2].audio.duration":    40,
		"sourceBin.sources[0].duration": 500,
	}
	for path, want := range checks {
		if got := lookup(t, root, path); got != want {
			t.Fatalf("preserve %s = %v, want %v", path, got, want)
		}
	}
	if res.Stats.AudioPreserved != 2 {
		t.Fatalf("audio preserved = %d, want 2", res.Stats.AudioPreserved)
	}

	res = run(t, load(t, audioProject), transform.Options{Kind: transform.Temporal, Factor: 2})
	for path, want := range map[string]float64{
		clips + "[0].duration":      100,
		clips + "[0].mediaStart":    60,
		clips + "[0].mediaDuration": 100,
	} {
		if got := lookup(t, res.Document.Root, path); got != want {
			t.Fatalf("without preservation %s = %v, want %v", path, got, want)
		}
	}

	res = run(t, load(t, audioProject), transform.Options{Kind: transform.Spatial, Factor: 2, PreserveAudioDuration: true})
	if res.Stats.AudioPreserved != 0 {
		t.Fatalf("spatial transforms must not report preserved audio, got %d", res.Stats.AudioPreserved)
	}
}

func TestCustomAudioTypes(t *testing.T) {
	res := run(t, load(t, audioProject), transform.Options{
		Kind: transform.Temporal, Factor: 2, PreserveAudioDuration: true, AudioTypes: []string{"ScreenVMFile"},
	})
	clips := "timeline.sceneTrack.scenes[0].csml.tracks[0].medias"
	if got := lookup(t, res.Document.Root, clips+"[1].duration"); got != 30 {
		t.Fatalf("ScreenVMFile duration = %v, want 30", got)
	}
	if got := lookup(t, res.Document.Root, clips+"[0].duration"); got != 100 {
		t.Fatalf("AMFile duration = %v, want 100", got)
	}
}

func TestLegacyRectScalars(t *testing.T) {
	legacy := `{"version":"1.0","timeline":{},"sourceBin":[{"rect0":0,"rect1":10,"rect2":640,"rect3":480,"rect":[0,10,640,480],"trimStartSum":5}]}`
	res := run(t, load(t, legacy), transform.Options{Kind: transform.Spatial, Factor: 0.5})
	for path, want := range map[string]float64{
		"sourceBin[0].rect1":   5,
		"sourceBin[0].rect2":   320,
		"sourceBin[0].rect[3]": 240,
	} {
		if got := lookup(t, res.Document.Root, path); got != want {
			t.Fatalf("legacy %s = %v, want %v", path, got, want)
		}
	}

	current := `{"version":"9.0","timeline":{"trimStartSum":5},"sourceBin":{"sources":[{"rect0":0,"rect1":10,"rect":[0,10,640,480]}]}}`
	res = run(t, load(t, current), transform.Options{Kind: transform.Spatial, Factor: 0.5})
	if got := lookup(t, res.Document.Root, "sourceBin.sources[0].rect1"); got != 10 {
		t.Fatalf("current table must not scale rect1, got %v", got)
	}
	if got := lookup(t, res.Document.Root, "sourceBin.sources[0].rect[2]"); got != 320 {
		t.Fatalf("current rect[2] = %v, want 320", got)
	}

	res = run(t, load(t, current), transform.Options{Kind: transform.Temporal, Factor: 2})
	if got := lookup(t, res.Document.Root, "timeline.trimStartSum"); got != 10 {
		t.Fatalf("current trimStartSum = %v, want 10", got)
	}
	legacyTrim := `{"version":"1.0","timeline":{"trimStartSum":5},"sourceBin":[]}`
	res = run(t, load(t, legacyTrim), transform.Options{Kind: transform.Temporal, Factor: 2})
	if got := lookup(t, res.Document.Root, "timeline.trimStartSum"); got != 5 {
		t.Fatalf("legacy trimStartSum = %v, want 5", got)
	}
}

func TestCatalogAndExclusions(t *testing.T) {
	input := `{"version":"9.0","width":1920,"height":1080,"editRate":705600000,"videoFormatFrameRate":30,
	"timeline":{"id":7,"scenes":[{"medias":[{"id":3,"trackIndex":2,"start":0,"duration":10,"scalar":"1/1",
		"parameters":{"anchor0":0.5,"geometryCrop0":0.1,"volume":0.8,"translation1":40},
		"effects":[{"parameters":{"color-red":0.5,"tolerance":0.2,"hue":0.3}}],
		"def":{"width":200,"height":100,"tail-x":5,"tail-y":-5,"stroke-width":2,"line-spacing":0.1,"fill-color-red":1,"font":{"size":24,"name":"Arial"}}}]}]},
	"sourceBin":{"sources":[{"id":1,"src":"a.mp4","size":12345,"rect":[0,0,1920,1080],"range":[0,300],"duration":300,"sourceTracks":[{"trackRect":[0,0,1920,1080],"editRate":30,"range":[0,300],"duration":300}]}]}}`

	res := run(t, load(t, input), transform.Options{Kind: transform.Spatial, Factor: 0.5})
	root := res.Document.Root
	m := "timeline.scenes[0].medias[0]."
	checks := map[string]float64{
		"width":                               960,
		"height":                              540,
		"editRate":                            705600000,
		"videoFormatFrameRate":                30,
		m + "id":                              3,
		m + "trackIndex":                      2,
		m + "parameters.anchor0":              0.5,
		m + "parameters.geometryCrop0":        0.1,
		m + "parameters.volume":               0.8,
		m + "parameters.translation1":         20,
		m + "effects[0].parameters.color-red": 0.5,
		m + "effects[0].parameters.tolerance": 0.2,
		m + "def.width":                       100,
		m + "def.tail-x":                      2.5,
		m + "def.tail-y":                      -2.5,
		m + "def.stroke-width":                1,
		m + "def.line-spacing":                0.1,
		m + "def.fill-color-red":              1,
		m + "def.font.size":                   12,
		"sourceBin.sources[0].size":           12345,
		"sourceBin.sources[0].rect[2]":        960,
		"sourceBin.sources[0].range[1]":       300,
		"sourceBin.sources[0].sourceTracks[0].trackRect[3]": 540,
	}
	for path, want := range checks {
		if got := lookup(t, root, path); got != want {
			t.Fatalf("spatial %s = %v, want %v", path, got, want)
		}
	}

	res = run(t, load(t, input), transform.Options{Kind: transform.Temporal, Factor: 2})
	root = res.Document.Root
	for path, want := range map[string]float64{
		m + "duration":                                  20,
		"editRate":                                      705600000,
		"sourceBin.sources[0].duration":                 300,
		"sourceBin.sources[0].range[1]":                 300,
		"sourceBin.sources[0].sourceTracks[0].duration": 300,
		"sourceBin.sources[0].sourceTracks[0].editRate": 30,
	} {
		if got := lookup(t, root, path); got != want {
			t.Fatalf("temporal %s = %v, want %v", path, got, want)
		}
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", res.Warnings)
	}
}

func TestVerticesAndPoints(t *testing.T) {
	input := `{"version":"9.0","timeline":{"scenes":[{"medias":[{"def":{"vertices":[[0,0],[10,20]],"points":[{"x":1,"y":2}]}}]}]},"sourceBin":{"sources":[]}}`
	res := run(t, load(t, input), transform.Options{Kind: transform.Spatial, Factor: 3})
	d := "timeline.scenes[0].medias[0].def."
	for path, want := range map[string]float64{
		d + "vertices[1][0]": 30,
		d + "vertices[1][1]": 60,
		d + "points[0].x":    3,
		d + "points[0].y":    6,
	} {
		if got := lookup(t, res.Document.Root, path); got != want {
			t.Fatalf("%s = %v, want %v", path, got, want)
		}
	}
}

func TestSkipsNonNumericWithWarnings(t *testing.T) {
	input := `{"version":"9.0","timeline":{"scenes":[{"medias":[{"start":"soon","duration":null,"markIn":true,"keyframes":[1,{"time":2}],"parameters":{"opacity":{"keyframes":"bad"}}},{"start":{"unit":"frames"},"duration":4,"width":{"unit":"px"}}]}]},"sourceBin":{"sources":[]}}`
	doc := load(t, input)
	res := run(t, doc, transform.Options{Kind: transform.Temporal, Factor: 2})

	var messages []string
	for _, w := range res.Warnings {
		messages = append(messages, w.String())
	}
	joined := strings.Join(messages, "\n")
	for _, want := range []string{
		"timeline.scenes[0].medias[0].start: expected a number",
		"timeline.scenes[0].medias[0].markIn: expected a number",
		"timeline.scenes[0].medias[0].keyframes[0]: keyframe entry must be an object",
		"timeline.scenes[0].medias[0].parameters.opacity.keyframes: keyframes must be a list",
		"timeline.scenes[0].medias[1].start: expected a number or animated value for temporal field",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing warning %q in:\n%s", want, joined)
		}
	}
	if len(res.Warnings) != 5 {
		t.Fatalf("expected 5 warnings, got %d:\n%s", len(res.Warnings), joined)
	}
	if res.Stats.Skipped != 5 {
		t.Fatalf("skipped = %d, want 5", res.Stats.Skipped)
	}
	if got := lookup(t, res.Document.Root, "timeline.scenes[0].medias[1].duration"); got != 8 {
		t.Fatalf("sibling of skipped object not scaled: %v", got)
	}
	if got := lookup(t, res.Document.Root, "timeline.scenes[0].medias[0].keyframes[1].time"); got != 4 {
		t.Fatalf("valid keyframe entry not scaled: %v", got)
	}
}

func TestMalformedDocument(t *testing.T) {
	tr, err := transform.New(transform.Options{Kind: transform.Spatial, Factor: 2}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, input := range []string{
		`{"version":"9.0","sourceBin":{"sources":[]}}`,
		`{"version":"9.0","timeline":[],"sourceBin":{"sources":[]}}`,
	} {
		_, err := tr.Transform(load(t, input))
		var me *project.MalformedDocumentError
		if !errors.As(err, &me) {
			t.Fatalf("%s: expected MalformedDocumentError, got %v", input, err)
		}
	}
}

func TestOverflowIsSanitizedOnSave(t *testing.T) {
	input := `{"version":"9.0","timeline":{"scenes":[{"medias":[{"start":1e308,"duration":Infinity}]}]},"sourceBin":{"sources":[]}}`
	res := run(t, load(t, input), transform.Options{Kind: transform.Temporal, Factor: 10})
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", res.Warnings)
	}
	data, report, err := project.Save(res.Document, project.SaveOptions{Compact: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(report.Replaced) != 2 {
		t.Fatalf("expected 2 replacements, got %v", report.Replaced)
	}
	if !strings.Contains(string(data), `{"start":0.0,"duration":0.0}`) {
		t.Fatalf("unexpected output %s", data)
	}
}

func TestMarkersAndTimelineKeyframes(t *testing.T) {
	input := `{"version":"9.0","timeline":{"parameters":{"toc":{"type":"string","keyframes":[{"time":300,"value":"Intro","endTime":300}]}},"markers":[{"name":"A","time":60}]},"sourceBin":{"sources":[]}}`
	res := run(t, load(t, input), transform.Options{Kind: transform.Temporal, Factor: 0.5})
	root := res.Document.Root
	if got := lookup(t, root, "timeline.parameters.toc.keyframes[0].time"); got != 150 {
		t.Fatalf("toc time = %v, want 150", got)
	}
	if got := lookup(t, root, "timeline.markers[0].time"); got != 30 {
		t.Fatalf("marker time = %v, want 30", got)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("string marker names must not warn: %v", res.Warnings)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]transform.Kind{"xy": transform.Spatial, "Spatial": transform.Spatial, "time": transform.Temporal, "timescale": transform.Temporal} {
		got, err := transform.ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := transform.ParseKind("zoom"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestTableLookupPrecedence(t *testing.T) {
	table := transform.TableFor(project.SchemaCurrent)
	tests := []struct {
		ctx   transform.Context
		zone  transform.Zone
		field string
		want  transform.Class
	}{
		{transform.ContextFont, transform.ZoneTimeline, "size", transform.ClassSpatial},
		{transform.ContextSource, transform.ZoneSourceBin, "size", transform.ClassExcluded},
		{transform.ContextClip, transform.ZoneTimeline, "size", transform.ClassNone},
		{transform.ContextClip, transform.ZoneTimeline, "duration", transform.ClassTemporal},
		{transform.ContextSource, transform.ZoneSourceBin, "duration", transform.ClassExcluded},
		{transform.ContextClip, transform.ZoneTimeline, "rotation1", transform.ClassExcluded},
		{transform.ContextAnnotation, transform.ZoneTimeline, "stroke-color-blue", transform.ClassExcluded},
		{transform.ContextKeyframe, transform.ZoneTimeline, "time", transform.ClassTemporal},
		{transform.ContextClip, transform.ZoneTimeline, "time", transform.ClassNone},
		{transform.ContextClip, transform.ZoneTimeline, "keyframes", transform.ClassKeyframeTrack},
	}
	for _, tt := range tests {
		if got := table.Lookup(tt.ctx, tt.zone, tt.field); got != tt.want {
			t.Fatalf("Lookup(%s, %s, %q) = %s, want %s", tt.ctx, tt.zone, tt.field, got, tt.want)
		}
	}
	if transform.TableFor(project.SchemaLegacy).Lookup(transform.ContextSource, transform.ZoneSourceBin, "rect0") != transform.ClassSpatial {
		t.Fatal("legacy table must classify rect0 as spatial")
	}
}
