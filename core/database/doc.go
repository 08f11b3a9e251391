// Package database opens the optional GORM connection backing the audit history.
//
// Two drivers are supported: "mysql" for shared deployments and "sqlite" for a single
// node (a file path, or ":memory:" in tests). An empty driver or "none" returns
// ErrDisabled and the service runs without history.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("Database unavailable, audit history disabled", zap.Error(err))
//	}
package database
