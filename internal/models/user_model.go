package models

import (
	"strings"
	"time"
)

// Role is the authorization level stored on a user record.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a LifeLedger account. Email is the unique identity key.
type User struct {
	ID           string    `json:"id" firestore:"-" bson:"-"` // Document ID (Firestore: normalized email, Mongo: ObjectID hex)
	Email        string    `json:"email" firestore:"email" bson:"email"`
	DisplayName  string    `json:"displayName,omitempty" firestore:"displayName,omitempty" bson:"displayName,omitempty"`
	PhotoURL     string    `json:"photoURL,omitempty" firestore:"photoURL,omitempty" bson:"photoURL,omitempty"`
	IsPremium    bool      `json:"isPremium" firestore:"isPremium" bson:"isPremium"`
	Role         Role      `json:"role" firestore:"role" bson:"role"`
	LessonsCount int64     `json:"lessonsCount" firestore:"lessonsCount" bson:"lessonsCount"` // Number of lessons this user has contributed
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp" bson:"updatedAt"`
}

// NormalizeEmail trims and lower-cases an email so it can be compared and used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
