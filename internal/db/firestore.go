package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"lifeledger-backend-go/internal/config"
)

// FirebaseClients bundles the clients derived from a single Firebase app.
type FirebaseClients struct {
	App       *firebase.App
	Firestore *firestore.Client // nil unless requested
	Auth      *auth.Client
}

// NewFirebaseClients initializes the Firebase Admin SDK from appConfig.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS, then the base64 service
// account JSON, then Application Default Credentials. The Firestore client is
// only opened when withFirestore is set.
func NewFirebaseClients(ctx context.Context, appConfig *config.Config, logger *zap.Logger, withFirestore bool) (*FirebaseClients, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("NewFirebaseClients: appConfig cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file does not exist, falling back to ADC resolution by the SDK",
				zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with base64 encoded service account JSON")
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decodedJSON))
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	var fbConfig *firebase.Config
	if appConfig.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: appConfig.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	clients := &FirebaseClients{App: app}

	if withFirestore {
		fs, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("app.Firestore: %w", err)
		}
		clients.Firestore = fs
		logger.Info("Firestore client initialized")
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		clients.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}
	clients.Auth = authClient
	logger.Info("Firebase Auth client initialized")

	return clients, nil
}

// Close releases the Firestore connection if one was opened.
func (c *FirebaseClients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

// docRef returns a reference or ErrInvalidID when id is empty or contains a path separator.
func docRef(client *firestore.Client, collection, id string) (*firestore.DocumentRef, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	ref := client.Collection(collection).Doc(id)
	if ref == nil {
		return nil, ErrInvalidID
	}
	return ref, nil
}
