// Package dashboard implements the client-side core of the complaint
// dashboard: a typed HTTP boundary over the update service, a sync
// controller that owns the visible record list and drives periodic and
// manual refresh, and the single shared inline-edit session.
//
// The presentation layer renders snapshots and dispatches intents; it takes
// no decisions of its own.
package dashboard
