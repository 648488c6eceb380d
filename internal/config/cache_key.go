package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LearnerResultsKey returns the key holding a learner's serialized result history
func (r *CacheKeyStruct) LearnerResultsKey(learnerID string) string {
	return fmt.Sprintf("learner:%s:results", learnerID)
}

// SessionSnapshotKey returns the cache key for an active session's snapshot
func (r *CacheKeyStruct) SessionSnapshotKey(sessionID string) string {
	return fmt.Sprintf("session:%s:snapshot", sessionID)
}

var CacheKey = NewCacheKeyStruct()
