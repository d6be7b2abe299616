package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// s3API is the subset of *s3.Client the store uses
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Store writes one JSON object per snapshot under
// {prefix}/{date}/{unix-nanos}-{id}.json. Keys sort by date and then by
// write time, so the greatest key is the latest snapshot.
type S3Store struct {
	client s3API
	bucket string
	prefix string

	mu       sync.Mutex
	lastNano int64
}

// OpenS3 creates an S3 store from configuration. Explicit keys take
// precedence over the default AWS credential chain.
func OpenS3(ctx context.Context, cfg model.StoreConfig) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.S3Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, persistErr("open", fmt.Errorf("load AWS config: %w", err))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			// S3-compatible servers (MinIO, LocalStack) want path-style addressing
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

func newS3Store(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Save uploads a snapshot object
func (s *S3Store) Save(ctx context.Context, results *model.AnalysisResults, date string) error {
	snap := newSnapshot(results, date)
	snap.CreatedAt = s.nextCreatedAt(snap.CreatedAt)

	doc, err := json.Marshal(snap)
	if err != nil {
		return persistErr("save", fmt.Errorf("marshal snapshot: %w", err))
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(snap)),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return persistErr("save", fmt.Errorf("upload snapshot: %w", err))
	}
	return nil
}

// LoadLatest downloads the snapshot with the greatest key
func (s *S3Store) LoadLatest(ctx context.Context) (*model.AnalysisResults, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, persistErr("load", err)
	}
	if len(keys) == 0 {
		return nil, ErrNotFound
	}

	snap, err := s.get(ctx, keys[len(keys)-1])
	if err != nil {
		return nil, persistErr("load", err)
	}
	return &snap.Results, nil
}

// List downloads every snapshot in key order
func (s *S3Store) List(ctx context.Context) ([]model.Snapshot, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, persistErr("list", err)
	}

	snapshots := make([]model.Snapshot, 0, len(keys))
	for _, key := range keys {
		snap, err := s.get(ctx, key)
		if err != nil {
			return nil, persistErr("list", err)
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing
func (s *S3Store) Close() error {
	return nil
}

// nextCreatedAt keeps write times strictly increasing so two saves in the
// same nanosecond still sort in write order
func (s *S3Store) nextCreatedAt(t time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := t.UnixNano()
	if n <= s.lastNano {
		n = s.lastNano + 1
	}
	s.lastNano = n
	return time.Unix(0, n).UTC()
}

func (s *S3Store) key(snap model.Snapshot) string {
	name := fmt.Sprintf("%019d-%s.json", snap.CreatedAt.UnixNano(), snap.ID)
	return path.Join(s.prefix, snap.Date, name)
}

// keys lists every snapshot key in ascending order
func (s *S3Store) keys(ctx context.Context) ([]string, error) {
	listPrefix := ""
	if s.prefix != "" {
		listPrefix = s.prefix + "/"
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(listPrefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			if key := aws.ToString(obj.Key); strings.HasSuffix(key, ".json") {
				keys = append(keys, key)
			}
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (s *S3Store) get(ctx context.Context, key string) (*model.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &snap, nil
}
