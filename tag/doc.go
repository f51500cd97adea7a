// Package tag finds and replaces {{key}} tags in text.
//
// Tags are matched innermost first: every "{{" becomes the new candidate
// start, so "{{a{{b}}}}" yields the tag "{{b}}" and leaves the outer markers
// for a later pass. Replacement happens in a single left-to-right rebuild
// after the scan, so edits never shift the offsets of later matches.
//
// Enclosure tracking makes the scanner aware of single braces in the text,
// which lets tags carry JSON-like arguments:
//
//	{{->Echo( {"A": "x}}"} )}}
//
// With tracking on, a "}}" only closes a tag while no single "{" is
// pending, and text that leaves a "{" open fails with ErrUnbalanced.
package tag
