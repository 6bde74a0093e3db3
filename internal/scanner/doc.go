// Package scanner discovers deployable flow scripts. It walks a root
// directory tree, treats every directory whose name matches the configured
// predicate as a deployment container, and reports each immediate file with
// the configured extension as one source unit.
package scanner
