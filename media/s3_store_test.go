package media

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []*s3.DeleteObjectInput
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorePutAndDelete(t *testing.T) {
	client := &fakeS3{}
	store := newS3Store(client, S3Config{Bucket: "videotube", Region: "eu-west-1"})

	url, err := store.Put(context.Background(), "avatar/2024/03/a.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "https://videotube.s3.eu-west-1.amazonaws.com/avatar/2024/03/a.png", url)

	require.Len(t, client.puts, 1)
	require.Equal(t, "videotube", aws.ToString(client.puts[0].Bucket))
	require.Equal(t, "avatar/2024/03/a.png", aws.ToString(client.puts[0].Key))
	require.Equal(t, "image/png", aws.ToString(client.puts[0].ContentType))
	require.Equal(t, int64(9), aws.ToInt64(client.puts[0].ContentLength))
	require.Equal(t, []byte("png-bytes"), client.bodies[0])

	require.NoError(t, store.Delete(context.Background(), url))
	require.Len(t, client.deletes, 1)
	require.Equal(t, "avatar/2024/03/a.png", aws.ToString(client.deletes[0].Key))
}

func TestS3StoreIgnoresForeignURLs(t *testing.T) {
	client := &fakeS3{}
	store := newS3Store(client, S3Config{Bucket: "videotube", Endpoint: "http://minio:9000/"})

	require.NoError(t, store.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/sample.jpg"))
	require.Empty(t, client.deletes)

	require.NoError(t, store.Delete(context.Background(), "http://minio:9000/videotube/cover-image/x.jpg"))
	require.Len(t, client.deletes, 1)
	require.Equal(t, "cover-image/x.jpg", aws.ToString(client.deletes[0].Key))
}

func TestS3StoreErrors(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	store := newS3Store(client, S3Config{Bucket: "videotube", PublicURL: "https://cdn.example.com/"})

	_, err := store.Put(context.Background(), "k", "image/png", nil)
	require.ErrorContains(t, err, "access denied")

	err = store.Delete(context.Background(), "https://cdn.example.com/k")
	require.ErrorContains(t, err, "access denied")
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"})
	require.Error(t, err)
}
