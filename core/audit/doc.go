// Package audit keeps a history of every reconciliation attempt and manual confirmation.
//
// Entries are stored through GORM in the check_entries table. The database is optional:
// a nil Repository, or one built over a nil *gorm.DB, accepts writes and returns empty
// history so callers never branch on whether auditing is configured.
package audit
