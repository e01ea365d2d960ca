// Package progress computes read-only dashboard statistics over a user's
// accumulated study data. Nothing here is persisted; every figure is
// recomputed from source rows at request time.
package progress
