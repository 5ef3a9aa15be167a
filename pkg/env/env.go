// Package env provides small helpers over os.Getenv.
package env

import "os"

// Get reads key from the environment, falling back when unset or blank.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
