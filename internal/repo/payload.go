package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"KipVault/internal/custody"
)

// PayloadStore — off-chain хранилище зашифрованных envelope'ов.
// Ключ объекта — content-locator из аккаунта vault.
type PayloadStore interface {
	Put(ctx context.Context, key string, env *custody.Envelope) error
	Get(ctx context.Context, key string) (*custody.Envelope, error)
}

// MinioPayloadStore хранит envelope'ы как JSON-объекты в S3-совместимом бакете.
type MinioPayloadStore struct {
	client *minio.Client
	bucket string
}

// NewMinioPayloadStore подключается к MinIO/S3 и гарантирует наличие бакета.
func NewMinioPayloadStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioPayloadStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connect: %w", err)
	}
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}
	return &MinioPayloadStore{client: client, bucket: bucket}, nil
}

func (s *MinioPayloadStore) Put(ctx context.Context, key string, env *custody.Envelope) error {
	if err := env.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(b), int64(len(b)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put envelope: %w", err)
	}
	return nil
}

func (s *MinioPayloadStore) Get(ctx context.Context, key string) (*custody.Envelope, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get envelope: %w", err)
	}
	defer obj.Close()
	b, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read envelope: %w", err)
	}
	var env custody.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", custody.ErrBadEnvelope, err)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}
