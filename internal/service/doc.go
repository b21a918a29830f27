// Package service wires the store, the correlation engine and topology
// synthesis into the operations the HTTP surface exposes. Services own
// cross-cutting behavior (serialization of correlation passes, event
// publication) while the engines stay pure.
package service
