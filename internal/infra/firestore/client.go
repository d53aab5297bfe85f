// internal/infra/firestore/client.go
package firestoreinfra

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ClientWrapper holds the Firestore client used for mint receipts.
type ClientWrapper struct {
	Client    *firestore.Client
	ProjectID string
}

// NewClient connects to Firestore. An empty credentialsFile uses ADC.
func NewClient(ctx context.Context, projectID, credentialsFile string, log *zap.Logger) (*ClientWrapper, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: create client: %w", err)
	}

	log.Named("firestore").Info("connected", zap.String("project", projectID))
	return &ClientWrapper{Client: client, ProjectID: projectID}, nil
}

func (cw *ClientWrapper) Close() error {
	if cw == nil || cw.Client == nil {
		return nil
	}
	return cw.Client.Close()
}
