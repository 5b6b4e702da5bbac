// Package sanitizer normalizes client-supplied booking fields before
// validation and storage.
//
// Every function is idempotent and reports unusable input by returning an
// empty string rather than an error, leaving the decision to the validator.
package sanitizer
