package testdb

import "time"

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second
