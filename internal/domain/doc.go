// Package domain contains the core business entities and value objects of
// the study tracker: users, topics, spaced-repetition revisions, study
// sessions, question records, syllabus items, and notifications. Entities
// validate themselves; persistence and delivery concerns live elsewhere.
package domain
