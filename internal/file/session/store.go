package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/rkit/filemanager-go/internal/pkg/errors"
	"github.com/rkit/filemanager-go/internal/pkg/redis"
)

// DefaultTTL bounds how long an abandoned upload session keeps its
// file-id list around.
const DefaultTTL = 12 * time.Hour

// Store tracks which staged file ids belong to an upload session, per
// attribute. The intake boundary records ids here as files are
// staged; the binding call reads them back when the owning record is
// saved, then clears the list. State is explicit, never ambient: the
// session id is an argument on every call.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Key builds the redis key for a session's per-attribute id list.
func Key(sessionID, attribute string) string {
	return fmt.Sprintf("filemanager:session:%s:%s", sessionID, attribute)
}

// Add appends a staged file id to the session's list for an attribute.
func (s *Store) Add(ctx context.Context, sessionID, attribute string, fileID int64) error {
	k := Key(sessionID, attribute)
	if _, err := s.rdb.RPush(ctx, k, fileID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSessionFailed, k)
	}
	if _, err := s.rdb.Expire(ctx, k, s.ttl); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSessionFailed, k)
	}
	return nil
}

// IDs returns the staged file ids for an attribute, in staging order.
func (s *Store) IDs(ctx context.Context, sessionID, attribute string) ([]int64, error) {
	k := Key(sessionID, attribute)
	values, err := s.rdb.LRange(ctx, k, 0, -1)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileSessionFailed, k)
	}
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Remove drops one file id from the session's list.
func (s *Store) Remove(ctx context.Context, sessionID, attribute string, fileID int64) error {
	k := Key(sessionID, attribute)
	if _, err := s.rdb.LRem(ctx, k, 0, fileID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSessionFailed, k)
	}
	return nil
}

// Clear forgets the session's list for an attribute, typically right
// after a successful bind.
func (s *Store) Clear(ctx context.Context, sessionID, attribute string) error {
	k := Key(sessionID, attribute)
	if _, err := s.rdb.Del(ctx, k); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSessionFailed, k)
	}
	return nil
}
