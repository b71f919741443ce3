package repositories

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"github.com/mkataria09/sealdrop/internal/crypto"
)

// KeyWrapper adds one more envelope around stored private key material, so a
// database dump alone is not enough to mount an offline credential-guessing
// attack. It is optional; when disabled, blobs are stored as produced by the
// identity layer.
type KeyWrapper interface {
	Wrap(ctx context.Context, plaintext []byte) ([]byte, error)
	Unwrap(ctx context.Context, wrapped []byte) ([]byte, error)
}

// LocalKeyWrapper seals under a single master key held in configuration.
type LocalKeyWrapper struct {
	masterKey []byte
}

func NewLocalKeyWrapper(masterKey []byte) (*LocalKeyWrapper, error) {
	switch len(masterKey) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("master key must be 16, 24, or 32 bytes, got %d", len(masterKey))
	}
	return &LocalKeyWrapper{masterKey: masterKey}, nil
}

func (w *LocalKeyWrapper) Wrap(_ context.Context, plaintext []byte) ([]byte, error) {
	return crypto.Encrypt(w.masterKey, plaintext)
}

func (w *LocalKeyWrapper) Unwrap(_ context.Context, wrapped []byte) ([]byte, error) {
	return crypto.Decrypt(w.masterKey, wrapped)
}

// KMSKeyWrapper seals under an AWS KMS key, so the master key never touches
// this process.
type KMSKeyWrapper struct {
	client *kms.Client
	keyARN string
}

func NewKMSKeyWrapper(ctx context.Context, region, keyARN string) (*KMSKeyWrapper, error) {
	if keyARN == "" {
		return nil, fmt.Errorf("KMS key ARN not configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &KMSKeyWrapper{
		client: kms.NewFromConfig(awsCfg),
		keyARN: keyARN,
	}, nil
}

func (w *KMSKeyWrapper) Wrap(ctx context.Context, plaintext []byte) ([]byte, error) {
	result, err := w.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:     &w.keyARN,
		Plaintext: plaintext,
	})
	if err != nil {
		return nil, fmt.Errorf("KMS encrypt failed: %w", err)
	}
	return result.CiphertextBlob, nil
}

func (w *KMSKeyWrapper) Unwrap(ctx context.Context, wrapped []byte) ([]byte, error) {
	result, err := w.client.Decrypt(ctx, &kms.DecryptInput{
		KeyId:          &w.keyARN,
		CiphertextBlob: wrapped,
	})
	if err != nil {
		return nil, fmt.Errorf("KMS decrypt failed: %w", err)
	}
	return result.Plaintext, nil
}
