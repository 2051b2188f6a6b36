package loader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/svscore/dataset"
	"github.com/hupe1980/svscore/resource"
)

// MinioScheme is the tag prefix MinioLoader accepts:
// "minio://endpoint/bucket/key".
const MinioScheme = "minio://"

// MinioLoader streams a native-container dataset from an S3-compatible
// object store via the MinIO client, covering on-prem deployments the
// AWS SDK's endpoint resolution doesn't address.
type MinioLoader struct {
	Client *minio.Client
	// Res, if non-nil, throttles the download through the shared
	// resource controller's IO limiter.
	Res *resource.Controller
}

func (MinioLoader) Accepts(tag string) bool {
	return strings.HasPrefix(tag, MinioScheme)
}

func (l MinioLoader) Load(ctx context.Context, tag string) (dataset.Dataset[float32], error) {
	bucket, key, err := parseMinioTag(tag)
	if err != nil {
		return nil, err
	}

	info, err := l.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("loader: stat %s: %w", tag, err)
	}
	if l.Res != nil {
		if err := l.Res.AcquireIO(ctx, int(info.Size)); err != nil {
			return nil, fmt.Errorf("loader: io throttle %s: %w", tag, err)
		}
	}

	obj, err := l.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("loader: get %s: %w", tag, err)
	}
	defer obj.Close()

	var body io.Reader = obj
	d, err := decodeNativeContainer(body)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", tag, err)
	}
	return d, nil
}

// parseMinioTag splits "minio://endpoint/bucket/key" into its bucket and
// key components; the endpoint is informational only here, since the
// caller already constructed the *minio.Client pointed at it.
func parseMinioTag(tag string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(tag, MinioScheme)
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("loader: malformed minio tag %q, want minio://endpoint/bucket/key", tag)
	}
	return parts[1], parts[2], nil
}
