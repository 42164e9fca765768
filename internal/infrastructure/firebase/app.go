// Package firebase bootstraps the Firebase Admin SDK clients used by the
// firebase identity provider and the firestore loan store.
package firebase

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type Clients struct {
	App       *fb.App
	Auth      *auth.Client
	Firestore *firestore.Client
}

// NewClients initialises the Admin SDK once. credentialsFile may be empty to
// use Application Default Credentials. withFirestore controls whether a
// firestore client is opened.
func NewClients(ctx context.Context, projectID, credentialsFile string, withFirestore bool) (*Clients, error) {
	if projectID == "" {
		return nil, errors.New("firebase: project id is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	c := &Clients{App: app, Auth: authClient}
	if withFirestore {
		fs, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
		c.Firestore = fs
	}
	return c, nil
}

func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
