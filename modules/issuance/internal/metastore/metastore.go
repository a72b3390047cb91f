// Package metastore uploads token metadata documents to S3 and returns the
// uri the minted token should carry.
package metastore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
)

type Config struct {
	// Enabled turns metadata uploads on. When disabled, mint-request intake
	// still validates and acknowledges requests without storing documents.
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	KeyPrefix string `mapstructure:"key_prefix"`
	// PublicBaseURL overrides the uri scheme of stored documents, e.g. a CDN
	// origin. Defaults to s3://<bucket>/<key>.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type Store struct {
	conf     Config
	uploader *manager.Uploader
}

func New(ctx context.Context, conf Config) (*Store, error) {
	sdkConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "can't load aws user config")
	}
	s3client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if conf.Region != "" {
			o.Region = conf.Region
		}
	})
	return &Store{
		conf:     conf,
		uploader: manager.NewUploader(s3client),
	}, nil
}

// Document is the metadata json stored for a token, shaped after the common
// token metadata convention consumed by marketplaces.
type Document struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Put uploads the document and returns its uri. Keys are content-addressed,
// re-submitting the same document is idempotent.
func (s *Store) Put(ctx context.Context, doc Document) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal metadata document")
	}

	digest := sha256.Sum256(body)
	key := path.Join(s.conf.KeyPrefix, hex.EncodeToString(digest[:])+".json")

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.conf.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload metadata document")
	}

	if s.conf.PublicBaseURL != "" {
		return strings.TrimSuffix(s.conf.PublicBaseURL, "/") + "/" + key, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.conf.Bucket, key), nil
}
