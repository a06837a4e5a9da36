package connection

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/charmbracelet/log"
	"google.golang.org/api/option"
)

// FBConnection returns a Firestore client for the service account key at
// credentialsPath. It is only used for exporting weekly history.
func FBConnection(ctx context.Context, credentialsPath string, logger *log.Logger) (*firestore.Client, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("environment variable FIREBASE_CREDENTIALS is not set")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	logger.Info("Firestore connection successful")
	return client, nil
}
