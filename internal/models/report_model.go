package models

import "time"

// Report flags a lesson for moderation. One report per (LessonID, ReporterEmail).
type Report struct {
	ID            string    `json:"id" firestore:"-" bson:"-"`
	LessonID      string    `json:"lessonId" firestore:"lessonId" bson:"lessonId"`
	LessonTitle   string    `json:"lessonTitle" firestore:"lessonTitle" bson:"lessonTitle"` // Snapshot taken when the report is filed
	ReporterEmail string    `json:"reporterEmail" firestore:"reporterEmail" bson:"reporterEmail"`
	Reason        string    `json:"reason,omitempty" firestore:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp" bson:"createdAt"`
}
