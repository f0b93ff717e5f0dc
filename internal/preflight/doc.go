// Package preflight provides readiness checks for the filesystem paths and
// binaries chapsplit depends on.
//
// These checks run in two contexts:
//   - The split pipeline calls CheckDirectoryAccess after creating the output
//     directory, so an unwritable target fails before any ffmpeg job starts.
//   - The CLI "chapsplit check" command uses RunAll to display readiness.
package preflight
