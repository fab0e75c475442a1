// Package types defines the Contact entity, the Directory interface, the
// backend Config, and the standard errors shared by the phonebook storage
// layer and its presentation layers.
package types
