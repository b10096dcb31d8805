// Package filestoretest provides an in-memory filestore.Store for tests.
package filestoretest

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/filestore"
)

type entry struct {
	data []byte
	info filestore.ObjectInfo
}

// Store keeps objects in memory. Every write advances its clock by one
// second so LastModified ordering is deterministic.
type Store struct {
	mu      sync.Mutex
	buckets map[string]map[string]entry
	clock   time.Time

	PingErr error
}

var _ filestore.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		buckets: map[string]map[string]entry{},
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *Store) Ping(context.Context) error { return s.PingErr }

func (s *Store) Close() error { return nil }

// HasBucket reports whether bucket was created.
func (s *Store) HasBucket(bucket string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.buckets[bucket]
	return ok
}

func (s *Store) EnsureBucket(_ context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = map[string]entry{}
	}
	return nil
}

func (s *Store) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, contentType string) (*filestore.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "read body", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "bucket %q not found", bucket)
	}

	s.clock = s.clock.Add(time.Second)
	sum := md5.Sum(data)
	info := filestore.ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  contentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: s.clock,
	}
	b[key] = entry{data: data, info: info}
	return &info, nil
}

func (s *Store) ListObjects(_ context.Context, bucket string, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "bucket %q not found", bucket)
	}

	keys := make([]string, 0, len(b))
	for k := range b {
		if strings.HasPrefix(k, opts.Prefix) && k > opts.Marker {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := []filestore.ObjectInfo{}
	seenDirs := map[string]bool{}
	for _, k := range keys {
		if !opts.Recursive {
			rest := strings.TrimPrefix(k, opts.Prefix)
			if i := strings.Index(rest, "/"); i >= 0 {
				dir := opts.Prefix + rest[:i+1]
				if !seenDirs[dir] {
					seenDirs[dir] = true
					out = append(out, filestore.ObjectInfo{Key: dir, Size: -1, IsDir: true})
				}
				continue
			}
		}
		out = append(out, b[k].info)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) GetObject(_ context.Context, bucket, key string) (filestore.Object, error) {
	e, err := s.lookup(bucket, key)
	if err != nil {
		return nil, err
	}
	info := e.info
	return &object{Reader: bytes.NewReader(e.data), info: &info}, nil
}

func (s *Store) StatObject(_ context.Context, bucket, key string) (*filestore.ObjectInfo, error) {
	e, err := s.lookup(bucket, key)
	if err != nil {
		return nil, err
	}
	info := e.info
	return &info, nil
}

func (s *Store) PresignGetURL(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if _, err := s.lookup(bucket, key); err != nil {
		return "", err
	}
	u := url.URL{
		Scheme:   "http",
		Host:     "filestore.test",
		Path:     "/" + bucket + "/" + key,
		RawQuery: url.Values{"X-Amz-Expires": {ttl.String()}}.Encode(),
	}
	return u.String(), nil
}

func (s *Store) lookup(bucket, key string) (entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return entry{}, errs.Newf(errs.ErrKindNotFound, "bucket %q not found", bucket)
	}
	e, ok := b[key]
	if !ok {
		return entry{}, errs.Newf(errs.ErrKindNotFound, "object %q not found", key)
	}
	return e, nil
}

type object struct {
	*bytes.Reader
	info *filestore.ObjectInfo
}

func (o *object) Close() error { return nil }

func (o *object) Info() *filestore.ObjectInfo { return o.info }
