// Package testsupport provides helpers shared across package tests: temp
// configs, ledger stores, stub binaries on PATH, placeholder files, and an
// in-memory document store fake.
package testsupport
