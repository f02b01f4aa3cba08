// Package errors provides the classified error primitives used across notionblog.
//
// Errors carry a category (config, network, notion, lock, ...), a severity and a
// retry strategy. The transport relies on the retry strategy to decide whether a
// failed call is retried (transient) or surfaced immediately (permanent).
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryNotion, "query database failed").
//		WithRetry(errors.RetryBackoff).
//		WithContext("database_id", id).
//		WithCause(originalErr).
//		Build()
package errors
