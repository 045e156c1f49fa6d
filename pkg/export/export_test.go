package export

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/gate"
	"github.com/platinummonkey/samonya/pkg/generation"
	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 PNG
const pixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

var exportTime = time.UnixMilli(1717228800123)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTXT, false},
		{"txt", FormatTXT, false},
		{" PDF ", FormatPDF, false},
		{"mp3", FormatMP3, false},
		{"json", FormatJSON, false},
		{"docx", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t, "[SAMONYA AI AUDIO SCRIPT]\n[FORMAT: MP3]\n\nhello", Render("hello", FormatMP3, catalog.TierStarter))
	assert.Equal(t, "[SAMONYA AI BUSINESS DOCUMENT]\n\nhello", Render("hello", FormatPDF, catalog.TierCreator))
	assert.Equal(t, "hello", Render("hello", FormatJSON, catalog.TierBusiness))
	assert.Equal(t, "hello"+Watermark, Render("hello", FormatTXT, catalog.TierFree))
}

func TestBuild_FreeTierBlocked(t *testing.T) {
	_, err := Build("content", "AI Logo Generator", FormatTXT, catalog.TierFree, exportTime)
	require.Error(t, err)
	assert.True(t, gate.IsUpgradeRequired(err))
}

func TestBuild_TextAndImages(t *testing.T) {
	content := "## Logo concept\nBold lines" +
		generation.EncodeImage("image/jpeg", pixel) +
		"Palette: orange" +
		generation.EncodeImage("image/png", "%%%broken")

	artifacts, err := Build(content, "AI Logo  Generator", FormatPDF, catalog.TierStarter, exportTime)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	img := artifacts[0]
	assert.Equal(t, KindImage, img.Kind)
	assert.Equal(t, "Samonya_AI_Logo_Generator_Image_1717228800123.png", img.Filename)
	assert.Equal(t, "image/jpeg", img.MIME)
	raw, _ := base64.StdEncoding.DecodeString(pixel)
	assert.Equal(t, raw, img.Data)

	text := artifacts[1]
	assert.Equal(t, KindText, text.Kind)
	assert.Equal(t, "Samonya_AI_Logo_Generator_Content_1717228800123.pdf", text.Filename)
	assert.Equal(t, "text/plain", text.MIME)
	assert.Equal(t, "[SAMONYA AI BUSINESS DOCUMENT]\n\n## Logo concept\nBold lines\nPalette: orange", string(text.Data))
}

func TestBuild_JSONMime(t *testing.T) {
	artifacts, err := Build(`{"slogan":"Taste Nairobi"}`, "AI Slogan Generator", "JSON", catalog.TierBusiness, exportTime)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "application/json", artifacts[0].MIME)
	assert.Equal(t, "Samonya_AI_Slogan_Generator_Content_1717228800123.json", artifacts[0].Filename)
}

func TestBuild_ImageOnly(t *testing.T) {
	artifacts, err := Build(generation.EncodeImage("image/png", pixel), "Brand Kit Generator", FormatTXT, catalog.TierCreator, exportTime)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, KindImage, artifacts[0].Kind)
}

type mockS3 struct {
	mu        sync.Mutex
	puts      []*s3.PutObjectInput
	putErr    error
	headErr   error
	createErr error
	created   bool
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.puts = append(m.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if m.headErr != nil {
		return nil, m.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (m *mockS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	m.created = true
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

type mockPresigner struct{}

func (mockPresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://minio.local/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key) + "?X-Amz-Signature=abc"}, nil
}

func TestInlineStore(t *testing.T) {
	loc, err := InlineStore{}.Put(context.Background(), "s1", Artifact{Filename: "a.txt", MIME: "text/plain", Kind: KindText, Data: []byte("hi")})
	require.NoError(t, err)
	assert.Equal(t, "aGk=", loc.Data)
	assert.Equal(t, 2, loc.Size)
	assert.Empty(t, loc.URL)
}

func TestS3Store_Put(t *testing.T) {
	client := &mockS3{}
	store := newS3Store(client, "samonya-exports")

	loc, err := store.Put(context.Background(), "sess-1", Artifact{Filename: "Samonya_X_Content_1.txt", MIME: "text/plain", Kind: KindText, Data: []byte("hello")})
	require.NoError(t, err)

	assert.Equal(t, "exports/sess-1/Samonya_X_Content_1.txt", loc.Key)
	assert.Equal(t, "s3://samonya-exports/exports/sess-1/Samonya_X_Content_1.txt", loc.URL)
	assert.Empty(t, loc.Data)

	require.Len(t, client.puts, 1)
	put := client.puts[0]
	assert.Equal(t, "samonya-exports", aws.ToString(put.Bucket))
	assert.Equal(t, "text/plain", aws.ToString(put.ContentType))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", put.Metadata["checksum-sha256"])

	store.presign = mockPresigner{}
	loc, err = store.Put(context.Background(), "sess-1", Artifact{Filename: "b.png", MIME: "image/png", Data: []byte{1}})
	require.NoError(t, err)
	assert.Contains(t, loc.URL, "X-Amz-Signature")

	client.putErr = errors.New("AccessDenied")
	_, err = store.Put(context.Background(), "sess-1", Artifact{Filename: "c.txt"})
	assert.ErrorContains(t, err, "failed to upload c.txt")
}

func TestEnsureBucket(t *testing.T) {
	client := &mockS3{}
	require.NoError(t, ensureBucket(context.Background(), client, "b"))
	assert.False(t, client.created)

	client = &mockS3{headErr: errors.New("NotFound")}
	require.NoError(t, ensureBucket(context.Background(), client, "b"))
	assert.True(t, client.created)

	client = &mockS3{headErr: errors.New("NotFound"), createErr: errors.New("BucketAlreadyOwnedByYou")}
	assert.NoError(t, ensureBucket(context.Background(), client, "b"))

	client = &mockS3{headErr: errors.New("NotFound"), createErr: errors.New("AccessDenied")}
	assert.ErrorContains(t, ensureBucket(context.Background(), client, "b"), "failed to create bucket")
}

type recordingStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (r *recordingStore) Put(ctx context.Context, sessionID string, a Artifact) (Location, error) {
	if r.err != nil {
		return Location{}, r.err
	}
	r.mu.Lock()
	r.keys = append(r.keys, ObjectKey(sessionID, a.Filename))
	r.mu.Unlock()
	return locationFor(a), nil
}

func TestExporter_Export(t *testing.T) {
	store := &recordingStore{}
	metrics := observability.NewNopMetrics()
	e := NewExporter(Options{Store: store, Metrics: metrics, Now: func() time.Time { return exportTime }})

	content := "Intro" + generation.EncodeImage("image/png", pixel) + generation.EncodeImage("image/png", pixel)
	locs, err := e.Export(context.Background(), "sess-9", catalog.TierCreator, "Brand Kit Generator", content, FormatTXT)
	require.NoError(t, err)
	require.Len(t, locs, 3)
	assert.Equal(t, KindImage, locs[0].Kind)
	assert.Equal(t, KindImage, locs[1].Kind)
	assert.Equal(t, KindText, locs[2].Kind)
	assert.Equal(t, "Samonya_Brand_Kit_Generator_Image_1717228800123.png", locs[0].Filename)
	assert.Equal(t, "Samonya_Brand_Kit_Generator_Image_1717228800123_2.png", locs[1].Filename)
	assert.Len(t, store.keys, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExportsTotal.WithLabelValues("txt", "ok")))
}

func TestExporter_Errors(t *testing.T) {
	metrics := observability.NewNopMetrics()
	e := NewExporter(Options{Metrics: metrics})

	_, err := e.Export(context.Background(), "s", catalog.TierFree, "Tool", "content", FormatTXT)
	assert.True(t, gate.IsUpgradeRequired(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExportsTotal.WithLabelValues("txt", "denied")))

	_, err = e.Export(context.Background(), "s", catalog.TierStarter, "Tool", "  \n ", FormatTXT)
	assert.ErrorIs(t, err, ErrNothingToExport)

	_, err = e.Export(context.Background(), "s", catalog.TierStarter, "Tool", "x", "docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	failing := NewExporter(Options{Store: &recordingStore{err: errors.New("bucket gone")}})
	_, err = failing.Export(context.Background(), "s", catalog.TierStarter, "Tool", "x", FormatTXT)
	assert.ErrorContains(t, err, "bucket gone")
}
