// Package s3blob stores registrant photos in an S3 bucket.
package s3blob

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/soumya-corp/sammelan-registration/registration"
)

var _ registration.BlobStore = &Uploader{}

type Uploader struct {
	s3Client *s3.Client
	bucket   string
	baseURL  string
}

// NewUploader returns an Uploader writing to bucket. baseURL is the public
// prefix stored on the registration, e.g. a CloudFront distribution in front
// of the bucket; the object key is appended to it.
func NewUploader(s3Client *s3.Client, bucket string, baseURL string) *Uploader {
	return &Uploader{
		s3Client: s3Client,
		bucket:   bucket,
		baseURL:  baseURL,
	}
}

func (u *Uploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	_, err := u.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", registration.NewTimeoutError("Upload timed out")
		}
		return "", registration.NewUploadFailedError("Failed PutObject call", err)
	}

	return u.baseURL + "/" + key, nil
}
