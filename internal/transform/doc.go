// Package transform rescales the spatial or temporal quantities of a project
// document.
//
// The walker visits every mapping under a structural context (root, timeline
// scene, track, clip, effect, callout, media catalog entry, ...) and looks up
// each field in an immutable field table chosen by the document's schema.
// A field's class decides what happens to its value:
//
//	Spatial        multiplied by a SPATIAL factor
//	Temporal       multiplied by a TEMPORAL factor
//	Excluded       never multiplied (rotation, opacity, rates, ids, ...)
//	KeyframeTrack  times follow TEMPORAL; values follow the owning field
//
// Values that are sequences are scaled element-wise and mappings are treated
// as animated parameters whose defaultValue, x and y inherit the owner's
// class. Fields that cannot be scaled are skipped and reported as warnings.
package transform
