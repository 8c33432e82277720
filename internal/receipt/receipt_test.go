package receipt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore is a function-backed Store for fallback tests.
type mockStore struct {
	putFunc  func(ctx context.Context, key, contentType string, body io.Reader) error
	openFunc func(ctx context.Context, key string) (io.ReadCloser, error)
}

func (m *mockStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	if m.putFunc != nil {
		return m.putFunc(ctx, key, contentType, body)
	}
	return errors.New("not implemented")
}

func (m *mockStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.openFunc != nil {
		return m.openFunc(ctx, key)
	}
	return nil, errors.New("not implemented")
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestExtension(t *testing.T) {
	tests := []struct {
		contentType string
		ext         string
		ok          bool
	}{
		{"application/pdf", ".pdf", true},
		{"image/PNG", ".png", true},
		{"image/jpeg; charset=binary", ".jpg", true},
		{"text/html", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			ext, ok := Extension(tt.contentType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("12-abc.pdf"))
	assert.Equal(t, "image/jpeg", ContentType("receipts/12-abc.JPG"))
	assert.Equal(t, "image/webp", ContentType("12-abc.webp"))
	assert.Equal(t, "application/octet-stream", ContentType("12-abc"))
}

func TestCleanKey(t *testing.T) {
	for _, key := range []string{"", "/etc/passwd", "../secret", "a/../../b", "..", `a\b`} {
		_, ok := cleanKey(key)
		assert.False(t, ok, key)
	}
	got, ok := cleanKey("receipts/./12-abc.pdf")
	assert.True(t, ok)
	assert.Equal(t, "receipts/12-abc.pdf", got)
}

func TestFileStore_PutOpen(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "receipts/7-a.pdf", "application/pdf", strings.NewReader("%PDF-1.4 first")))
	require.NoError(t, store.Put(ctx, "receipts/7-a.pdf", "application/pdf", strings.NewReader("%PDF-1.4 second")))

	rc, err := store.Open(ctx, "receipts/7-a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 second", readAll(t, rc))

	_, err = store.Open(ctx, "receipts/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, store.Put(ctx, "../escape.pdf", "application/pdf", strings.NewReader("x")))
}

func TestFileStore_PutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store, err := NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	err = store.Put(ctx, "r.pdf", "application/pdf", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Open(context.Background(), "r.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	store := newS3Store(fake, "shop-bucket", zerolog.Nop())

	require.NoError(t, store.Put(ctx, "receipts/1.png", "image/png", strings.NewReader("png-bytes")))
	assert.Contains(t, fake.objects, "shop-bucket/receipts/1.png")

	rc, err := store.Open(ctx, "receipts/1.png")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", readAll(t, rc))

	_, err = store.Open(ctx, "receipts/none.png")
	assert.ErrorIs(t, err, ErrNotFound)

	fake.putErr = errors.New("access denied")
	err = store.Put(ctx, "receipts/2.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket=shop-bucket")
}

func TestFallbackStore_S3Success(t *testing.T) {
	ctx := context.Background()

	s3 := &mockStore{
		putFunc: func(_ context.Context, key, _ string, body io.Reader) error {
			assert.Equal(t, "prod/receipts/1.pdf", key, "S3 key should have prefix")
			return nil
		},
	}
	local := &mockStore{
		putFunc: func(context.Context, string, string, io.Reader) error {
			t.Error("local store should not be used when S3 succeeds")
			return nil
		},
	}

	store := NewFallbackStore(s3, local, "prod/", true, zerolog.Nop())
	assert.NoError(t, store.Put(ctx, "receipts/1.pdf", "application/pdf", strings.NewReader("pdf")))
}

func TestFallbackStore_S3FailsFallsBackToLocal(t *testing.T) {
	ctx := context.Background()

	s3 := &mockStore{
		putFunc: func(_ context.Context, _, _ string, body io.Reader) error {
			_, _ = io.ReadAll(body)
			return errors.New("S3 connection failed")
		},
		openFunc: func(context.Context, string) (io.ReadCloser, error) {
			return nil, errors.New("S3 connection failed")
		},
	}
	local, err := NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	store := NewFallbackStore(s3, local, "prod/", true, zerolog.Nop())
	require.NoError(t, store.Put(ctx, "receipts/1.pdf", "application/pdf", strings.NewReader("full body")))

	rc, err := store.Open(ctx, "receipts/1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "full body", readAll(t, rc), "local copy must contain the whole body")
}

func TestFallbackStore_S3DisabledOrNil(t *testing.T) {
	ctx := context.Background()

	s3 := &mockStore{
		putFunc: func(context.Context, string, string, io.Reader) error {
			t.Error("S3 store should not be used when disabled")
			return nil
		},
	}
	var localKeys []string
	local := &mockStore{
		putFunc: func(_ context.Context, key, _ string, _ io.Reader) error {
			localKeys = append(localKeys, key)
			return nil
		},
	}

	require.NoError(t, NewFallbackStore(s3, local, "prod/", false, zerolog.Nop()).
		Put(ctx, "a.pdf", "application/pdf", strings.NewReader("x")))
	require.NoError(t, NewFallbackStore(nil, local, "prod/", true, zerolog.Nop()).
		Put(ctx, "b.pdf", "application/pdf", strings.NewReader("x")))

	assert.Equal(t, []string{"a.pdf", "b.pdf"}, localKeys)
}
