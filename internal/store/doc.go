// Package store defines the persistence interfaces for the study tracker's
// entities together with shared error values and the transaction helper.
// Implementations live under internal/platform; services depend only on the
// interfaces defined here.
package store
