package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding the active token id of a user.
func (r *CacheKeyStruct) UserSessionKey(userID uuid.UUID) string {
	return fmt.Sprintf("login:%s", userID)
}

// DocumentQuizKey returns the cache key for a document's validated quiz payload.
func (r *CacheKeyStruct) DocumentQuizKey(documentID uuid.UUID) string {
	return fmt.Sprintf("document:%s:quiz", documentID)
}

var CacheKey = NewCacheKeyStruct()
