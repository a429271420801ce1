// Package safepath guards file-serving operations against directory
// traversal.
//
// A Guard is constructed per allowed root (the scan root or a cache root)
// and every externally supplied path must pass through Guard.Resolve before
// being opened. Resolution canonicalizes the path (absolute, symlinks
// followed) and fails closed on any escape, canonicalization error, or
// non-regular-file target.
package safepath
