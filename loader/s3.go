package loader

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/svscore/dataset"
	"github.com/hupe1980/svscore/resource"
)

// S3Scheme is the tag prefix S3Loader accepts: "s3://bucket/key".
const S3Scheme = "s3://"

// S3Loader streams a native-container dataset from an S3 object.
type S3Loader struct {
	Client *s3.Client
	// Res, if non-nil, throttles the download through the shared
	// resource controller's IO limiter.
	Res *resource.Controller
}

func (S3Loader) Accepts(tag string) bool {
	return strings.HasPrefix(tag, S3Scheme)
}

func (l S3Loader) Load(ctx context.Context, tag string) (dataset.Dataset[float32], error) {
	bucket, key, err := parseS3Tag(tag)
	if err != nil {
		return nil, err
	}

	head, err := l.Client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("loader: head %s: %w", tag, err)
	}
	if l.Res != nil && head.ContentLength != nil {
		if err := l.Res.AcquireIO(ctx, int(*head.ContentLength)); err != nil {
			return nil, fmt.Errorf("loader: io throttle %s: %w", tag, err)
		}
	}

	buf := manager.NewWriteAtBuffer(nil)
	downloader := manager.NewDownloader(l.Client)
	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err != nil {
		return nil, fmt.Errorf("loader: download %s: %w", tag, err)
	}

	d, err := decodeNativeContainer(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", tag, err)
	}
	return d, nil
}

func parseS3Tag(tag string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(tag, S3Scheme)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("loader: malformed s3 tag %q, want s3://bucket/key", tag)
	}
	return parts[0], parts[1], nil
}
