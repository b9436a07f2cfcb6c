package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vtree-dev/vtree/pkg/htmltree"
	"github.com/vtree-dev/vtree/pkg/wire"
)

// S3Store keeps snapshots in an S3 bucket under
// <prefix><name>/<seq padded to 20 digits>.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := snapshot.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "snapshots/")
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates a store over the given bucket and key prefix.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(name string, seq uint64) string {
	return fmt.Sprintf("%s%s/%020d", s.prefix, name, seq)
}

func (s *S3Store) Save(ctx context.Context, name string, seq uint64, tree *htmltree.Node) error {
	if !validName(name) {
		return ErrBadName
	}
	buf := wire.EncodeTree(tree)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name, seq)),
		Body:        bytes.NewReader(buf),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]string{
			"snapshot-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("snapshot: s3 put failed: %w", err)
	}
	return nil
}

func (s *S3Store) Load(ctx context.Context, name string, seq uint64) (*htmltree.Node, error) {
	if !validName(name) {
		return nil, ErrBadName
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name, seq)),
	})
	if err != nil {
		return nil, ErrNotFound
	}
	defer out.Body.Close()
	buf, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("snapshot: s3 read failed: %w", err)
	}
	return wire.DecodeTree(buf)
}

func (s *S3Store) Latest(ctx context.Context, name string) (*htmltree.Node, uint64, error) {
	metas, err := s.List(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	if len(metas) == 0 {
		return nil, 0, ErrNotFound
	}
	last := metas[len(metas)-1]
	tree, err := s.Load(ctx, name, last.Seq)
	if err != nil {
		return nil, 0, err
	}
	return tree, last.Seq, nil
}

func (s *S3Store) List(ctx context.Context, name string) ([]Meta, error) {
	if !validName(name) {
		return nil, ErrBadName
	}
	prefix := s.prefix + name + "/"
	var metas []Meta
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("snapshot: s3 list failed: %w", err)
		}
		for _, obj := range out.Contents {
			seqStr := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			seq, err := strconv.ParseUint(seqStr, 10, 64)
			if err != nil {
				continue
			}
			meta := Meta{Name: name, Seq: seq}
			if obj.Size != nil {
				meta.Size = *obj.Size
			}
			if obj.LastModified != nil {
				meta.CreatedAt = *obj.LastModified
			}
			metas = append(metas, meta)
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Seq < metas[j].Seq })
	return metas, nil
}

func (s *S3Store) Cleanup(ctx context.Context, name string, keep int) error {
	metas, err := s.List(ctx, name)
	if err != nil {
		return err
	}
	if keep < 0 {
		keep = 0
	}
	for i := 0; i < len(metas)-keep; i++ {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(name, metas[i].Seq)),
		})
		if err != nil {
			return fmt.Errorf("snapshot: s3 delete failed: %w", err)
		}
	}
	return nil
}
