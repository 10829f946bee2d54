// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by every outbound service call.
var HTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}
