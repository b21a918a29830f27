// Package repository defines the storage contracts for the identity
// store. Implementations live in subpackages (sqlite).
package repository
