// Package preview keeps the most recently generated partition of each
// classroom in Redis until a teacher saves or discards it.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"seating/grouping"
)

const keyPrefix = "preview:classroom:"

var ErrNotFound = errors.New("no pending preview")

type Preview struct {
	ClassroomID        int64            `json:"classroom_id"`
	MaximumFrontGroups int              `json:"maximum_front_groups"`
	Attempts           int              `json:"attempts"`
	CreatedAt          time.Time        `json:"created_at"`
	Groups             []grouping.Group `json:"groups"`
}

type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func Key(classroomID int64) string {
	return keyPrefix + strconv.FormatInt(classroomID, 10)
}

// Put replaces the classroom's pending preview.
func (s *Store) Put(ctx context.Context, p Preview) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("preview: encode classroom %d: %w", p.ClassroomID, err)
	}
	if err := s.Client.Set(ctx, Key(p.ClassroomID), data, s.TTL).Err(); err != nil {
		return fmt.Errorf("preview: store classroom %d: %w", p.ClassroomID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, classroomID int64) (Preview, error) {
	data, err := s.Client.Get(ctx, Key(classroomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Preview{}, ErrNotFound
	}
	if err != nil {
		return Preview{}, fmt.Errorf("preview: load classroom %d: %w", classroomID, err)
	}
	return decode(data)
}

func (s *Store) Delete(ctx context.Context, classroomID int64) error {
	if err := s.Client.Del(ctx, Key(classroomID)).Err(); err != nil {
		return fmt.Errorf("preview: delete classroom %d: %w", classroomID, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func decode(data []byte) (Preview, error) {
	var p Preview
	if err := json.Unmarshal(data, &p); err != nil {
		return Preview{}, fmt.Errorf("preview: decode: %w", err)
	}
	return p, nil
}
