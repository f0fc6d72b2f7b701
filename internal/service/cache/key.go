package cache

import "fmt"

// Key builds a response-cache key from an endpoint name and its
// parameter set.
func Key(endpoint string, params ...interface{}) string {
	key := endpoint
	for _, p := range params {
		key = fmt.Sprintf("%s:%v", key, p)
	}
	return key
}
