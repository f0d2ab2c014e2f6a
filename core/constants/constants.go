package constants

import "time"

// Context keys
const (
	ContextTokenData = "token_data"
)

// Timeouts
const (
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// Database settings
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Token scopes
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

// Scheduling defaults
const (
	DefaultSessionMinutes = 30
	LockWaitTimeout       = 2 * time.Second
	LockRetryInterval     = 50 * time.Millisecond
	LockTTL               = 10 * time.Second
)
