// Package soap implements the legacy SOAP dialect spoken by the game client's
// account-linking services.
//
// Owns:
//   - envelope parsing (one envelope shape: Envelope > Body > Method > args)
//   - the method registry and its per-method result policy
//   - success and fault envelope serialization, including the hardcoded
//     ticket-expired fault body the client pattern-matches on
//   - the dispatcher that turns one HTTP request into one SOAP reply
//
// Does not own:
//   - method semantics (see internal/account)
//   - persistence
//
// Invariants:
//   - every fault is returned with HTTP 500, except malformed XML which is 400
//   - building a reply never fails: response errors fall back to a fault, fault
//     errors fall back to a fixed literal envelope
package soap
