// Package cfgjson converts the gateway configuration to and from its JSON
// document form.
//
// Two encodings exist. EncodeForSaving carries every credential and is what
// the persistent store holds. EncodeForUI is served to local web clients: it
// adds a device info block, leaves credentials out and reports only whether
// the LAN API keys are set.
//
// Decode is tolerant: a document may carry any subset of keys. Each absent
// key falls back on its own, so a partial document from the web UI updates
// what it names and leaves stored credentials alone.
//
// Every node built or parsed is accounted through an Allocator, and every
// allocation is released before the call returns.
package cfgjson
