// Package inventory is the in-memory model of a host inventory: hosts, the
// groups they belong to, the parent/child hierarchy between groups and the
// variables attached to either.
//
// Every Inventory starts with the "all" and "ungrouped" groups. Hosts and
// groups are created lazily through GetOrCreateHost and GetOrCreateGroup and
// are owned by the Inventory that created them. Parsers and other inventory
// sources populate the model through the same small set of calls
// (GetOrCreateGroup, Group.AddHost, Group.AddChildGroup, SetVariable) and then
// call Finalize, which attaches every top-level group under "all".
//
// Variable values are cty.Value so that scalars and literal containers keep
// their types. Inheritance of group variables is resolved on demand by
// HostVars, never stored.
//
// An Inventory is not safe for concurrent mutation. Once populated it can be
// shared read-only.
package inventory
