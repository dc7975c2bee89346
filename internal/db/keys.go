package db

import (
	"crypto/sha256"
	"encoding/hex"

	"lifeledger-backend-go/internal/models"
)

// userKey is the document ID of a user in key-addressed stores (Firestore, memory).
func userKey(email string) string {
	return models.NormalizeEmail(email)
}

// reportKey derives a deterministic document ID for a (lesson, reporter) pair, so a
// create-if-absent on that ID is the uniqueness constraint.
func reportKey(lessonID, reporterEmail string) string {
	sum := sha256.Sum256([]byte(lessonID + "\x00" + models.NormalizeEmail(reporterEmail)))
	return hex.EncodeToString(sum[:])
}
