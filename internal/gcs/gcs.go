// Package gcs stores generated media in Cloud Storage and signs read URLs for it.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/mhpenta/genmedia"
	"github.com/mhpenta/genmedia/internal/lib/sl"
)

const (
	uriScheme = "gs://"

	// DefaultSignedURLTTL is how long signed read URLs stay valid.
	DefaultSignedURLTTL = 15 * time.Minute
)

var (
	ErrInvalidURI = errors.New("invalid gcs uri")
	ErrNoBucket   = errors.New("no bucket configured")
)

// Store is an object store backed by a Cloud Storage client.
type Store struct {
	client         *storage.Client
	bucket         string
	googleAccessID string
	ttl            time.Duration
	logger         *slog.Logger
}

// Ensure Store can persist generated batches.
var _ genmedia.Storage = (*Store)(nil)

type Options struct {
	// Bucket receives uploads. Signing works on any bucket.
	Bucket string
	// ServiceAccountEmail signs URLs through the IAM credentials API when the
	// ambient credentials carry no private key.
	ServiceAccountEmail string
	TTL                 time.Duration
	Logger              *slog.Logger
}

// New creates a Store using Application Default Credentials.
func New(ctx context.Context, opts Options) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return NewWithClient(client, opts), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *storage.Client, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultSignedURLTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		client:         client,
		bucket:         opts.Bucket,
		googleAccessID: opts.ServiceAccountEmail,
		ttl:            opts.TTL,
		logger:         opts.Logger.With(sl.Module("gcs")),
	}
}

// SignedURL returns a V4 signed GET URL for a gs:// object.
func (s *Store) SignedURL(_ context.Context, gcsURI string) (string, error) {
	bucket, object, err := ParseURI(gcsURI)
	if err != nil {
		return "", err
	}

	url, err := s.client.Bucket(bucket).SignedURL(object, &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(s.ttl),
		GoogleAccessID: s.googleAccessID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", gcsURI, err)
	}
	return url, nil
}

// SaveFile uploads data to path in the configured bucket and returns its gs:// URI.
func (s *Store) SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error) {
	if s.bucket == "" {
		return "", ErrNoBucket
	}

	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", path, err)
	}

	uri := ObjectURI(s.bucket, path)
	s.logger.Info("object saved", slog.String("uri", uri), slog.Int("size", len(data)))
	return uri, nil
}

// Bucket returns the upload bucket, empty when uploads are disabled.
func (s *Store) Bucket() string {
	return s.bucket
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Shutdown lets a do.Injector close the store.
func (s *Store) Shutdown() error {
	return s.Close()
}

// ParseURI splits gs://bucket/object into its bucket and object names.
func ParseURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q must start with %s", ErrInvalidURI, uri, uriScheme)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: %q must name a bucket and an object", ErrInvalidURI, uri)
	}
	return bucket, object, nil
}

// ObjectURI formats a gs:// URI.
func ObjectURI(bucket, object string) string {
	return uriScheme + bucket + "/" + strings.TrimPrefix(object, "/")
}
