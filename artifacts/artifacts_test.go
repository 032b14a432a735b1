package artifacts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves objects from a map, one object per list page.
type fakeS3 struct {
	objs map[string][]byte
	meta map[string]map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objs: make(map[string][]byte), meta: make(map[string]map[string]string)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objs[aws.ToString(in.Key)] = b
	f.meta[aws.ToString(in.Key)] = in.Metadata
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objs[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for k := range f.objs {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if start < len(keys) {
		k := keys[start]
		out.Contents = []s3types.Object{{Key: aws.String(k), Size: aws.Int64(int64(len(f.objs[k])))}}
		if start+1 < len(keys) {
			out.IsTruncated = aws.Bool(true)
			out.NextContinuationToken = aws.String(strconv.Itoa(start + 1))
		}
	}
	return out, nil
}

func testStores(t *testing.T) map[string]Store {
	fsys, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"fs":     fsys,
		"memory": NewMemory(),
		"s3":     newS3(newFakeS3(), "foam", "runs/"),
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	cells := []byte("Point (1) = {0,0,0};\n")
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			info, err := st.Put(ctx, "a/FoamCells.geo", cells)
			require.NoError(t, err)
			assert.Equal(t, int64(len(cells)), info.Size)
			assert.Equal(t, Fingerprint(cells), info.Fingerprint)

			_, err = st.Put(ctx, "a/FoamWalls.geo", []byte("x"))
			require.NoError(t, err)
			_, err = st.Put(ctx, "b/Foam.geo", []byte("y"))
			require.NoError(t, err)
			// replacing is allowed
			_, err = st.Put(ctx, "a/FoamWalls.geo", []byte("walls"))
			require.NoError(t, err)

			got, err := st.Get(ctx, "a/FoamCells.geo")
			require.NoError(t, err)
			assert.Equal(t, cells, got)
			got, err = st.Get(ctx, "a/FoamWalls.geo")
			require.NoError(t, err)
			assert.Equal(t, "walls", string(got))

			infos, err := st.List(ctx, "a/")
			require.NoError(t, err)
			require.Len(t, infos, 2)
			assert.Equal(t, "a/FoamCells.geo", infos[0].Key)
			assert.Equal(t, "a/FoamWalls.geo", infos[1].Key)
			assert.Equal(t, int64(5), infos[1].Size)

			all, err := st.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)

			_, err = st.Get(ctx, "missing.geo")
			assert.True(t, errors.Is(err, ErrNotFound))

			for _, bad := range []string{"", "/etc/passwd", "../up.geo"} {
				_, err = st.Put(ctx, bad, cells)
				assert.Error(t, err, bad)
			}
		})
	}
}

func TestS3Keys(t *testing.T) {
	fake := newFakeS3()
	st := newS3(fake, "foam", "/runs/")
	data := []byte("Volume (1) = {1};")
	_, err := st.Put(context.Background(), "x/Foam.geo", data)
	require.NoError(t, err)
	require.Contains(t, fake.objs, "runs/x/Foam.geo")
	assert.Equal(t, Fingerprint(data), fake.meta["runs/x/Foam.geo"][fingerprintMeta])
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("Point (1) = {0,0,0};"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint([]byte("Point (1) = {0,0,0};")))
	assert.NotEqual(t, a, Fingerprint([]byte("Point (1) = {0,0,1};")))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, "mem://")
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, st.Driver())

	st, err = Open(ctx, "file://"+t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, st.Driver())

	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
	st, err = Open(ctx, "s3://foam/runs")
	require.NoError(t, err)
	require.Equal(t, DriverS3, st.Driver())
	assert.Equal(t, "runs/", st.(*S3).prefix)

	_, err = Open(ctx, "s3://")
	assert.Error(t, err)
}
