package model

import "time"

// ClaimLock is an advisory lock row serializing claim attempts against one
// request. Acquisition is a unique _id insert; the TTL index on expires_at
// reclaims locks left behind by crashed claimers.
type ClaimLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
