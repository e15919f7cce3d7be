// Package accesscontrol implements role management inside the
// identity-access context.
//
// The module owns the single administrator identity and the commissioner
// set. Other contexts consult it through a read-side query service; they
// never reach into its repositories directly.
package accesscontrol
