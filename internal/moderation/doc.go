// Package moderation turns per-reporter content reports into a moderation
// queue and applies admin decisions to them.
//
// Aggregate is a pure fold over PENDING reports. Resolver applies one
// decision inside a single storage transaction. Both take the caller's
// authority as an explicit Actor rather than reading it from ambient state.
package moderation
