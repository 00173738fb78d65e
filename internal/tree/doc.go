// Package tree models project documents as an ordered JSON tree.
//
// Every value is one of three node variants: *Mapping, *Sequence or *Scalar.
// The set is closed; callers dispatch with a type switch or a Visitor. Mappings
// keep their fields in source order, and numbers keep the literal text they
// were decoded from so that untouched values re-encode byte for byte.
//
// Decode accepts the bare NaN, Infinity and -Infinity tokens some editors emit.
// Encode never writes them and fails with ErrNonFinite instead; sanitize the
// tree first when such values may be present.
package tree
