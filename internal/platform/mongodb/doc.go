// Package mongodb provides MongoDB implementations of the store interfaces.
// Posts and users live in the "posts" and "users" collections; identifiers are
// ObjectIDs rendered as 24-character hex strings.
package mongodb
