// Package domain contains the core types for host identity and topology
// synthesis: canonical hosts, device identities, field-level conflicts,
// correlation tags, and the parsed-record contracts emitted by scanner
// importers.
package domain
