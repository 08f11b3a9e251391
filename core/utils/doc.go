// Package utils provides strict conversions for values decoded from untrusted JSON.
//
// Every helper returns an error wrapping ErrConversion instead of a zero value, so that
// a malformed field can fail the whole decode rather than slip through as 0 or "".
package utils
