// Package syllabus parses the official exam curriculum from a plain-text
// file and loads it as shared reference data. Import is a one-shot
// operation; per-user progress against the imported items lives elsewhere.
package syllabus
