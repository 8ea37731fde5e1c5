package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	GlobalKeyPrefix = "wikiquiz"

	QuizServiceName = "quiz"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// QuizURLKey is the cache key of a quiz record looked up by article url.
// The url is hashed so arbitrary characters never reach the key space.
func QuizURLKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return GenerateCacheKey(QuizServiceName, "url", hex.EncodeToString(sum[:]))
}

// QuizIDKey is the cache key of a quiz record looked up by id.
func QuizIDKey(id int64) string {
	return GenerateCacheKey(QuizServiceName, "id", strconv.FormatInt(id, 10))
}
