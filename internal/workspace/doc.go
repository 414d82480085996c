// Package workspace defines the disk-backed output store that materializes
// rendered scaffolds under OutputRoot/<dir>/<path>. Writes go through a temp
// file + rename so a generated file is either absent or complete, and a
// per-file lock serializes concurrent writers of the same path. The Writer
// layered on top applies the overwrite policy (created / unchanged /
// overwritten) that keeps repeated generation idempotent on disk.
package workspace
