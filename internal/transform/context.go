package transform

// Context identifies the structural role of a mapping.
type Context int

const (
	ContextOther Context = iota
	ContextRoot
	ContextTimeline
	ContextScene
	ContextTrack
	ContextClip
	ContextParameters
	ContextCarrier
	ContextKeyframe
	ContextEffect
	ContextAnnotation
	ContextFont
	ContextSourceBin
	ContextSource
	ContextSourceTrack
	ContextMarker
)

var contextNames = [...]string{
	ContextOther:       "other",
	ContextRoot:        "root",
	ContextTimeline:    "timeline",
	ContextScene:       "scene",
	ContextTrack:       "track",
	ContextClip:        "clip",
	ContextParameters:  "parameters",
	ContextCarrier:     "carrier",
	ContextKeyframe:    "keyframe",
	ContextEffect:      "effect",
	ContextAnnotation:  "annotation",
	ContextFont:        "font",
	ContextSourceBin:   "sourceBin",
	ContextSource:      "source",
	ContextSourceTrack: "sourceTrack",
	ContextMarker:      "marker",
}

func (c Context) String() string {
	if int(c) < len(contextNames) {
		return contextNames[c]
	}
	return "unknown"
}

// Zone is the top-level subtree a mapping lives in.
type Zone int

const (
	ZoneRoot Zone = iota
	ZoneTimeline
	ZoneSourceBin
)

func (z Zone) String() string {
	switch z {
	case ZoneTimeline:
		return "timeline"
	case ZoneSourceBin:
		return "sourceBin"
	default:
		return "root"
	}
}

// scope is the structural position of a mapping during traversal.
type scope struct {
	ctx  Context
	zone Zone
}

// child returns the scope of a mapping reached through key from s. element is
// set when the mapping is an item of a sequence stored under key.
func (s scope) child(key string, element bool) scope {
	next := scope{ctx: ContextOther, zone: s.zone}
	switch key {
	case "timeline":
		if s.ctx == ContextRoot {
			next = scope{ctx: ContextTimeline, zone: ZoneTimeline}
		}
	case "sourceBin":
		if s.ctx == ContextRoot {
			next = scope{ctx: ContextSourceBin, zone: ZoneSourceBin}
			if element {
				next.ctx = ContextSource
			}
		}
	case "sources":
		if element && s.ctx == ContextSourceBin {
			next.ctx = ContextSource
		}
	case "sourceTracks":
		if element {
			next.ctx = ContextSourceTrack
		}
	case "scenes":
		if element {
			next.ctx = ContextScene
		}
	case "tracks":
		if element {
			next.ctx = ContextTrack
		}
	case "medias":
		if element {
			next.ctx = ContextClip
		}
	case "video", "audio":
		if !element && s.ctx == ContextClip {
			next.ctx = ContextClip
		}
	case "parameters":
		next.ctx = ContextParameters
	case "effects":
		if element {
			next.ctx = ContextEffect
		}
	case "def":
		next.ctx = ContextAnnotation
	case "font":
		next.ctx = ContextFont
	case "markers":
		if element {
			next.ctx = ContextMarker
		}
	}
	return next
}
