// Package utils holds small validation helpers shared by config sections.
package utils

import (
	"net"
	"regexp"
	"strconv"
)

// IsValidListenAddr checks if a string is a valid host:port listen address.
// The host part may be empty (":8899" listens on all interfaces).
func IsValidListenAddr(s string) bool {
	_, port, err := net.SplitHostPort(s)
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}

// IsValidDBConnectionString checks if a string is a valid PostgreSQL connection string.
func IsValidDBConnectionString(s string) bool {
	// Regular expression to match a valid PostgreSQL connection string
	var dbConnStringRegex = regexp.MustCompile(`^postgres://[^:]+:[^@]+@[^:]+:\d+/.+$`)
	return dbConnStringRegex.MatchString(s)
}
