// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/go-a2a/patent-analyst/pkg/logging"
)

// DefaultExpiry is the lifetime of a signed URL when none is configured.
const DefaultExpiry = 10 * time.Minute

const scheme = "gs://"

// GSURIError reports a malformed gs:// URI.
type GSURIError struct {
	URI    string
	Reason string
}

// Error implements error.
func (e *GSURIError) Error() string {
	return e.Reason
}

// ParseGSURI splits a gs://bucket/object URI into its bucket and object name.
func ParseGSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, scheme)
	if !ok {
		return "", "", &GSURIError{URI: uri, Reason: "URI must start with gs://"}
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", &GSURIError{URI: uri, Reason: "Invalid GCS URI; expected gs://bucket/object"}
	}
	return bucket, object, nil
}

// Signer issues V4 signed GET URLs for patent documents in Cloud Storage.
type Signer struct {
	client     *storage.Client
	accessID   string
	privateKey []byte
	expiry     time.Duration
}

// NewSigner returns a [Signer] whose URLs expire after expiry.
//
// With a service account key the URLs are signed locally with the key. Otherwise the
// signer falls back to Application Default Credentials and signs through the IAM
// credentials API.
func NewSigner(ctx context.Context, serviceAccountJSON string, expiry time.Duration) (*Signer, error) {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	s := &Signer{
		expiry: expiry,
	}

	if serviceAccountJSON != "" {
		jwt, err := google.JWTConfigFromJSON([]byte(serviceAccountJSON), storage.ScopeReadOnly)
		if err != nil {
			return nil, fmt.Errorf("parse service account key: %w", err)
		}
		s.accessID = jwt.Email
		s.privateKey = jwt.PrivateKey
		return s, nil
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{storage.ScopeReadOnly},
	})
	if err != nil {
		return nil, fmt.Errorf("get credentials for storage: %w", err)
	}
	client, err := storage.NewClient(ctx, option.WithAuthCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	s.client = client
	return s, nil
}

// Expiry returns the lifetime of the URLs issued by s.
func (s *Signer) Expiry() time.Duration {
	return s.expiry
}

// SignedURL returns a time-limited HTTPS URL for the object at uri.
func (s *Signer) SignedURL(ctx context.Context, uri string) (string, error) {
	bucket, object, err := ParseGSURI(uri)
	if err != nil {
		return "", err
	}

	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(s.expiry),
	}

	var url string
	switch {
	case len(s.privateKey) > 0:
		opts.GoogleAccessID = s.accessID
		opts.PrivateKey = s.privateKey
		url, err = storage.SignedURL(bucket, object, opts)
	case s.client != nil:
		url, err = s.client.Bucket(bucket).SignedURL(object, opts)
	default:
		return "", fmt.Errorf("sign %s: no signing credentials", uri)
	}
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", uri, err)
	}

	logging.FromContext(ctx).DebugContext(ctx, "signed document URL", slog.String("uri", uri), slog.Duration("expiry", s.expiry))
	return url, nil
}

// Close releases the storage client, if any.
func (s *Signer) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
