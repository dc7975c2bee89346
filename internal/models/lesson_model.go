package models

import "time"

// LessonAuthor is the creator identity denormalized onto every lesson.
type LessonAuthor struct {
	Email    string `json:"email" firestore:"email" bson:"email"`
	Name     string `json:"name,omitempty" firestore:"name,omitempty" bson:"name,omitempty"`
	PhotoURL string `json:"photoURL,omitempty" firestore:"photoURL,omitempty" bson:"photoURL,omitempty"`
}

// Lesson is a user-submitted piece of content.
type Lesson struct {
	ID            string       `json:"id" firestore:"-" bson:"-"`
	Title         string       `json:"title" firestore:"title" bson:"title"`
	Description   string       `json:"description,omitempty" firestore:"description,omitempty" bson:"description,omitempty"`
	Category      string       `json:"category,omitempty" firestore:"category,omitempty" bson:"category,omitempty"`
	EmotionalTone string       `json:"emotionalTone,omitempty" firestore:"emotionalTone,omitempty" bson:"emotionalTone,omitempty"`
	Image         string       `json:"image,omitempty" firestore:"image,omitempty" bson:"image,omitempty"`
	Privacy       string       `json:"privacy,omitempty" firestore:"privacy,omitempty" bson:"privacy,omitempty"`
	AccessLevel   string       `json:"accessLevel,omitempty" firestore:"accessLevel,omitempty" bson:"accessLevel,omitempty"`
	User          LessonAuthor `json:"user" firestore:"user" bson:"user"`
	Likes         []string     `json:"likes" firestore:"likes" bson:"likes"` // Liker IDs, no duplicates
	CreatedAt     time.Time    `json:"createdAt" firestore:"createdAt,serverTimestamp" bson:"createdAt"`
}
