// Package dag holds the directed graph that backs the group hierarchy of an
// inventory. Nodes are group names; an edge runs from a parent group to one of
// its children. Insertion order is preserved everywhere so that traversals are
// deterministic for identical input.
package dag
