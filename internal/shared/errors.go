package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Cluster errors
	ErrConnection   = fmt.Errorf("connection failed")
	ErrDiscovery    = fmt.Errorf("discovery failed")
	ErrTransfer     = fmt.Errorf("transfer failed")
	ErrClientClosed = fmt.Errorf("cluster client closed")
	ErrInvalidURI   = fmt.Errorf("invalid connection URI")

	// Storage errors
	ErrProfileNotFound = fmt.Errorf("profile not found")

	// Input validation errors
	ErrInvalidPlan     = fmt.Errorf("invalid plan")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
