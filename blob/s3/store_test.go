package s3blob

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/blob"
)

// fakeS3 keeps objects in memory. Multipart calls are never reached for
// the small bodies used here.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	panic("unexpected multipart upload")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	panic("unexpected multipart upload")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	panic("unexpected multipart upload")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	mod := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(f.objects[k]))),
			LastModified: aws.Time(mod),
		})
	}
	return out, nil
}

func newTestStore(fake *fakeS3) *Store {
	return &Store{
		client:   fake,
		bucket:   "trade-images",
		url:      func(k string) string { return "https://cdn.example.com/trade-images/" + k },
		partSize: minPartSize,
	}
}

func TestStorePutGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeS3()
	s := newTestStore(fake)

	url, err := s.Put(ctx, "1715000000123-42.png", strings.NewReader("img"), "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/trade-images/1715000000123-42.png", url)
	assert.Equal(t, "image/png", fake.types["1715000000123-42.png"])

	rc, err := s.Get(ctx, "1715000000123-42.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	_, err = s.Get(ctx, "missing.png")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestStoreListDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(newFakeS3())

	for _, name := range []string{"backups/a.csv", "backups/b.csv", "1-1.png"} {
		_, err := s.Put(ctx, name, strings.NewReader("x"), "")
		require.NoError(t, err)
	}

	infos, err := s.List(ctx, "backups/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "backups/a.csv", infos[0].Name)
	assert.Equal(t, int64(1), infos[0].Size)

	require.NoError(t, s.Delete(ctx, "backups/a.csv"))
	infos, err = s.List(ctx, "backups/")
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      ClientConfig
		endpoint string
		want     string
	}{
		{"explicit", ClientConfig{Bucket: "b", PublicURL: "https://cdn.example.com/"}, "", "https://cdn.example.com"},
		{"path_style", ClientConfig{Bucket: "b", ForcePathStyle: true}, "http://localhost:9000", "http://localhost:9000/b"},
		{"virtual_host", ClientConfig{Bucket: "b"}, "https://r2.example.com", "https://b.r2.example.com"},
		{"aws", ClientConfig{Bucket: "b", Region: "eu-west-1"}, "", "https://b.s3.eu-west-1.amazonaws.com"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, publicURL(tt.cfg, tt.endpoint))
		})
	}
}

func TestNormaliseEndpoint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://e2.example.com", normaliseEndpoint("https://e2.example.com", false))
	assert.Equal(t, "https://e2.example.com", normaliseEndpoint("e2.example.com", true))
	assert.Equal(t, "http://e2.example.com", normaliseEndpoint("e2.example.com", false))
}

func TestNewValidates(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), ClientConfig{Region: "us-east-1"})
	assert.ErrorContains(t, err, "bucket")
	_, err = New(context.Background(), ClientConfig{Bucket: "b"})
	assert.ErrorContains(t, err, "region")
}
