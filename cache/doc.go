// Package cache stores JSON values on disk with a TTL and a version stamp.
// npmkit uses it to keep `npm view` registry metadata between runs.
package cache
