package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Get when no archive exists for the id.
var ErrNotFound = errors.New("archive not found")

// Options configures an Archive.
type Options struct {
	Bucket     string
	Prefix     string
	Passphrase string
}

// ObjectInfo describes a downloaded archive object.
type ObjectInfo struct {
	Key              string            `json:"key"`
	Size             int64             `json:"size"`
	Encrypted        bool              `json:"encrypted"`
	EncryptionFormat string            `json:"encryption_format,omitempty"`
	Metadata         map[string]string `json:"metadata"`
}

// Archive stores generated decks as JSON objects in S3, optionally sealed.
type Archive struct {
	client     *s3.Client
	uploader   *manager.Uploader
	bucket     string
	prefix     string
	passphrase string
}

// NewArchive builds an Archive from the default AWS credential chain.
func NewArchive(ctx context.Context, opts Options) (*Archive, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewArchiveFromClient(s3.NewFromConfig(cfg), opts), nil
}

func NewArchiveFromClient(client *s3.Client, opts Options) *Archive {
	return &Archive{
		client:     client,
		uploader:   manager.NewUploader(client),
		bucket:     opts.Bucket,
		prefix:     strings.Trim(opts.Prefix, "/"),
		passphrase: opts.Passphrase,
	}
}

// Key returns the object key for a generation id.
func (a *Archive) Key(id string) string {
	if a.prefix == "" {
		return id + ".json"
	}
	return path.Join(a.prefix, id+".json")
}

// Put uploads payload under the id's key.
func (a *Archive) Put(ctx context.Context, id string, payload []byte, meta map[string]string) error {
	key := a.Key(id)
	body := payload
	s3Meta := make(map[string]string, len(meta)+2)
	for k, v := range meta {
		s3Meta[strings.ToLower(k)] = v
	}
	if a.passphrase != "" {
		sealed, err := Seal(payload, a.passphrase)
		if err != nil {
			return fmt.Errorf("failed to encrypt archive: %w", err)
		}
		body = sealed
		s3Meta["encrypted"] = "true"
		s3Meta["encryption-format"] = gcmMagic
	}

	out, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata:    s3Meta,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("key", key).
		Str("location", out.Location).
		Int("size", len(body)).
		Bool("encrypted", a.passphrase != "").
		Msg("archived deck to S3")
	return nil
}

// Get downloads the archive for id and opens it when sealed.
func (a *Archive) Get(ctx context.Context, id string) ([]byte, *ObjectInfo, error) {
	key := a.Key(id)
	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read S3 object: %w", err)
	}

	info := &ObjectInfo{Key: key, Metadata: make(map[string]string)}
	for k, v := range result.Metadata {
		info.Metadata[strings.ToLower(k)] = v
	}
	if result.ContentLength != nil {
		info.Size = *result.ContentLength
	}

	if IsSealed(data) {
		if a.passphrase == "" {
			return nil, nil, errors.New("archive is encrypted but no passphrase is configured")
		}
		data, err = Open(data, a.passphrase)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decrypt data: %w", err)
		}
		info.Encrypted = true
		info.EncryptionFormat = gcmMagic
	}
	return data, info, nil
}

// Ping checks that the bucket is reachable.
func (a *Archive) Ping(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	return err
}
