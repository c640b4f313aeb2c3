package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/widget-dashboard/internal/errs"
)

// Secrets path
// projects/{project}/secrets/{secretID}/versions/latest

const tokenCacheTTL = 5 * time.Minute

// gatewayTokenStore keeps the plugin gateway bearer token in Secret Manager.
// It satisfies pipeline.TokenSource.
type gatewayTokenStore struct {
	client    *secretmanager.Client
	projectID string
	secretID  string

	mu      sync.Mutex
	token   string
	fetched time.Time
}

func NewGatewayTokenStore(client *secretmanager.Client, projectID, secretID string) *gatewayTokenStore {
	return &gatewayTokenStore{
		client:    client,
		projectID: projectID,
		secretID:  secretID,
	}
}

func (s *gatewayTokenStore) secretName() string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, s.secretID)
}

func (s *gatewayTokenStore) ensureSecret(ctx context.Context) error {
	_, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: s.secretName()})
	if status.Code(err) == codes.NotFound {
		_, err = s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", s.projectID),
			SecretId: s.secretID,
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{Automatic: &secretmanagerpb.Replication_Automatic{}},
				},
			},
		})
	}
	return err
}

// StoreToken adds a new secret version and drops the cached copy.
func (s *gatewayTokenStore) StoreToken(ctx context.Context, token string) error {
	if err := s.ensureSecret(ctx); err != nil {
		return errs.NewExternalServiceError("secretmanager", "failed to ensure gateway token secret", true, err)
	}
	_, err := s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: s.secretName(),
		Payload: &secretmanagerpb.SecretPayload{
			Data: []byte(token),
		},
	})
	if err != nil {
		return errs.NewExternalServiceError("secretmanager", "failed to store gateway token", true, err)
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// Token returns the latest token version, cached for a few minutes.
func (s *gatewayTokenStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && time.Since(s.fetched) < tokenCacheTTL {
		return s.token, nil
	}

	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("%s/versions/latest", s.secretName()),
	})
	if err != nil {
		return "", errs.NewExternalServiceError("secretmanager", "failed to read gateway token", true, err)
	}
	s.token = string(res.Payload.Data)
	s.fetched = time.Now()
	return s.token, nil
}
