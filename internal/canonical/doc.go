// Package canonical produces canonical JSON for deck snapshots and game traces.
//
// The encoding follows RFC 8785: object keys sorted by UTF-16 code units,
// strings NFC normalized, no HTML escaping, and no floats or nulls. Two
// values that are logically equal always marshal to identical bytes, which
// is what golden trace files and snapshot IDs rely on.
package canonical
