// Package failure classifies chapsplit errors.
//
// Components tag their errors with one of the exported markers so the CLI can
// map any failure to a process exit code without knowing which package
// produced it. Typed errors elsewhere in the tree unwrap to both a marker and
// their underlying cause, so errors.Is works against either.
package failure
