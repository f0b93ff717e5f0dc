// Package testsupport provides helpers shared by chapsplit tests.
//
// The main tool is StubBinary, which writes a small shell script standing in
// for ffprobe or ffmpeg so tests can exercise real subprocess plumbing
// without the media tools installed.
package testsupport
