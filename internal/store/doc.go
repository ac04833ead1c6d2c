// Package store persists lists, tasks and action schemes. The sqlite
// driver is the durable default; the memory driver serves tests and
// ephemeral runs. Both expose the same Store interface and seed the
// same defaults so callers never care which one they got.
package store
