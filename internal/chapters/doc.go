// Package chapters turns probed chapters into work items.
//
// Options is the immutable run configuration shared by every component.
// Resolver derives the deterministic output path of each chapter and Plan
// pairs every chapter with its path, producing one WorkItem per chapter.
package chapters
