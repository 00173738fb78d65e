// Package project loads and saves screen-recording project documents.
//
// Load parses project text into a tree.Mapping and works out which schema
// generation the document follows. The declared "version" marker is read
// first; structural evidence from the media catalog ("sourceBin") overrides it
// when the two disagree, and the disagreement is reported as a Warning. Save
// runs the numeric-safety pass and encodes the tree.
package project
