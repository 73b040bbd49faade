package artifact

import (
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	// Packages
	storage "cloud.google.com/go/storage"
	agentface "github.com/atagle123/AgentFace"
	iterator "google.golang.org/api/iterator"
	option "google.golang.org/api/option"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Bucket stores artifacts in a Google Cloud Storage bucket under
// "<prefix>/<session>/<name>"
type Bucket struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

var _ Store = (*Bucket)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewBucket returns a store for a bucket. Credentials are found from the
// environment unless supplied as options.
func NewBucket(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*Bucket, error) {
	if bucket == "" {
		return nil, agentface.ErrBadParameter.With("missing bucket")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}
	return &Bucket{
		client: client,
		bucket: client.Bucket(bucket),
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Close releases the client
func (b *Bucket) Close() error {
	return b.client.Close()
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (b *Bucket) Put(ctx context.Context, session, name, contentType string, r io.Reader) (*Object, error) {
	if err := validate(session, name); err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = ContentType(name)
	}

	w := b.bucket.Object(b.key(session, name)).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return nil, agentface.ErrIOFailure.With(err)
	}
	if err := w.Close(); err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}
	return b.object(session, w.Attrs()), nil
}

func (b *Bucket) Open(ctx context.Context, session, name string) (io.ReadCloser, *Object, error) {
	if err := validate(session, name); err != nil {
		return nil, nil, err
	}
	r, err := b.bucket.Object(b.key(session, name)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil, agentface.ErrNotFound.Withf("%s/%s", session, name)
	} else if err != nil {
		return nil, nil, agentface.ErrIOFailure.With(err)
	}
	return r, &Object{
		Session:     session,
		Name:        name,
		Size:        r.Attrs.Size,
		ContentType: r.Attrs.ContentType,
		Modified:    r.Attrs.LastModified,
	}, nil
}

func (b *Bucket) List(ctx context.Context, session string) ([]*Object, error) {
	if err := validate(session, "-"); err != nil {
		return nil, err
	}
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: b.key(session, "")})

	var result []*Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		} else if err != nil {
			return nil, agentface.ErrIOFailure.With(err)
		}
		result = append(result, b.object(session, attrs))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Modified.After(result[j].Modified)
	})
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (b *Bucket) key(session, name string) string {
	key := session + "/" + name
	if b.prefix != "" {
		key = b.prefix + "/" + key
	}
	return key
}

func (b *Bucket) object(session string, attrs *storage.ObjectAttrs) *Object {
	return &Object{
		Session:     session,
		Name:        path.Base(attrs.Name),
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Modified:    attrs.Updated,
	}
}
