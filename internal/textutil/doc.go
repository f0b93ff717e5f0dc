// Package textutil provides filename sanitization for chapter titles.
//
// Titles come straight from container metadata and may contain path
// separators, reserved punctuation, control characters, or decomposed
// Unicode. SanitizeFileName turns them into a single safe path segment
// while leaving ordinary titles untouched.
package textutil
