package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/filestore"
	"github.com/koustreak/rsadapter/internal/logger"
)

const snapshotContentType = "application/json"

// SnapshotStore persists SchemaInfo values as JSON objects under
// <prefix><schema>/<id>.json in a single bucket.
type SnapshotStore struct {
	store  filestore.Store
	bucket string
	prefix string
	log    *logger.Logger
}

// NewSnapshotStore wraps store. prefix may be empty.
func NewSnapshotStore(store filestore.Store, bucket, prefix string, log *logger.Logger) *SnapshotStore {
	if log == nil {
		log = logger.Nop()
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &SnapshotStore{store: store, bucket: bucket, prefix: prefix, log: log}
}

// Key returns the object key a snapshot is stored under.
func (s *SnapshotStore) Key(info *SchemaInfo) string {
	return s.prefix + path.Join(info.Schema, info.ID+".json")
}

// Save uploads info, creating the bucket when needed.
func (s *SnapshotStore) Save(ctx context.Context, info *SchemaInfo) (*filestore.ObjectInfo, error) {
	if info == nil || info.ID == "" || info.Schema == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "snapshot needs an id and a schema")
	}

	body, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "encode snapshot", err)
	}

	if err := s.store.EnsureBucket(ctx, s.bucket); err != nil {
		return nil, err
	}

	key := s.Key(info)
	obj, err := s.store.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), snapshotContentType)
	if err != nil {
		return nil, err
	}

	s.log.InfoWith("snapshot saved", map[string]any{
		"bucket": s.bucket,
		"key":    key,
		"tables": len(info.Tables),
	})
	return obj, nil
}

// Load downloads and decodes the snapshot stored at key.
func (s *SnapshotStore) Load(ctx context.Context, key string) (*SchemaInfo, error) {
	obj, err := s.store.GetObject(ctx, s.bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	var info SchemaInfo
	if err := json.NewDecoder(obj).Decode(&info); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "decode snapshot "+key, err)
	}
	return &info, nil
}

// List returns the snapshots of schema, newest first.
func (s *SnapshotStore) List(ctx context.Context, schema string) ([]filestore.ObjectInfo, error) {
	objs, err := s.store.ListObjects(ctx, s.bucket, filestore.ListOptions{
		Prefix:    s.prefix + schema + "/",
		Recursive: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]filestore.ObjectInfo, 0, len(objs))
	for _, o := range objs {
		if o.IsDir || !strings.HasSuffix(o.Key, ".json") {
			continue
		}
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].LastModified.After(out[j].LastModified)
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// Latest loads the most recent snapshot of schema.
func (s *SnapshotStore) Latest(ctx context.Context, schema string) (*SchemaInfo, error) {
	objs, err := s.List(ctx, schema)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "no snapshots for schema %q", schema)
	}
	return s.Load(ctx, objs[0].Key)
}

// Stat returns the object metadata of a stored snapshot.
func (s *SnapshotStore) Stat(ctx context.Context, key string) (*filestore.ObjectInfo, error) {
	return s.store.StatObject(ctx, s.bucket, key)
}

// PresignURL returns a download link for a stored snapshot.
func (s *SnapshotStore) PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errs.New(errs.ErrKindInvalidInput, "presign ttl must be positive")
	}
	return s.store.PresignGetURL(ctx, s.bucket, key, ttl)
}
