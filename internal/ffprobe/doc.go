// Package ffprobe reads chapter metadata through ffprobe's JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing the chapter list
//   - Chapter: one chapter with its raw timestamps and tags
//
// Primary entry points:
//   - ReadChapters: executes ffprobe and returns the parsed Result
//   - ParseChapters: decodes captured JSON without running ffprobe
//
// Failures are reported as *InvocationError (ffprobe missing, unstartable,
// or exiting non-zero), *EncodingError (stdout is not UTF-8), or
// *ParseError (malformed JSON). An empty chapter list is not an error.
package ffprobe
