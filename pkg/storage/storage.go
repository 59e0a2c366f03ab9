// Package storage talks to the S3 compatible object storage (OSS) that
// holds processed images and uploaded backups.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"watch-list/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotConfigured is returned by NewClient when no bucket is set.
var ErrNotConfigured = errors.New("object storage is not configured")

const (
	ImagePrefix  = "images/"
	BackupPrefix = "backups/"
)

type Client struct {
	api       *s3.Client
	bucket    string
	publicURL string
}

func NewClient(ctx context.Context, cfg utils.StorageConfig) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	endpoint := normalizeEndpoint(cfg.Endpoint, cfg.DisableTLS)
	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = defaultPublicURL(endpoint, cfg)
	}

	return &Client{
		api:       api,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// defaultPublicURL is the bucket address when no CDN is configured: the
// custom endpoint, or AWS S3 itself.
func defaultPublicURL(endpoint string, cfg utils.StorageConfig) string {
	if endpoint != "" {
		return endpoint + "/" + cfg.Bucket
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	if cfg.ForcePathStyle {
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s", region, cfg.Bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
}

func normalizeEndpoint(endpoint string, disableTLS bool) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return ""
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	scheme := "https"
	if disableTLS {
		scheme = "http"
	}
	return scheme + "://" + endpoint
}

// PublicURL is the address browsers load key from.
func (c *Client) PublicURL(key string) string {
	return c.publicURL + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL reports the object key behind url when url lives in our bucket.
func (c *Client) KeyFromURL(url string) (string, bool) {
	return keyFromURL(c.publicURL, url)
}

func keyFromURL(base, url string) (string, bool) {
	if base == "" || !strings.HasPrefix(url, base+"/") {
		return "", false
	}
	key := strings.TrimPrefix(url, base+"/")
	return key, key != ""
}

// Put uploads data and returns its public URL.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	sum := sha256.Sum256(data)
	if err := c.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), hex.EncodeToString(sum[:]), contentType); err != nil {
		return "", err
	}
	return c.PublicURL(key), nil
}

// Upload streams size bytes from r with checksum metadata.
func (c *Client) Upload(ctx context.Context, key string, r io.Reader, size int64, sha256Hex, contentType string) error {
	checksum, err := encodeSHA256(sha256Hex)
	if err != nil {
		return err
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(c.bucket),
		Key:               aws.String(key),
		Body:              r,
		ContentLength:     aws.Int64(size),
		ContentType:       aws.String(contentType),
		ChecksumAlgorithm: s3types.ChecksumAlgorithmSha256,
		ChecksumSHA256:    aws.String(checksum),
		Metadata: map[string]string{
			"sha256": sha256Hex,
		},
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Object is a listed bucket entry.
type Object struct {
	Key          string
	LastModified time.Time
}

// List returns every object under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	paginator := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	var objects []Object
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects under %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:          aws.ToString(obj.Key),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

// ImageKey builds a content addressed key so a changed image never reuses a
// cached URL.
func ImageKey(resourceType, resourceID, kind string, data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s%s/%s/%s-%s.webp", ImagePrefix, resourceType, resourceID, kind, hex.EncodeToString(sum[:])[:12])
}

func encodeSHA256(hexDigest string) (string, error) {
	if hexDigest == "" {
		return "", errors.New("sha256 digest required")
	}
	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
