package preview

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"seating/grouping"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, ttl), mr
}

func TestKey(t *testing.T) {
	require.Equal(t, "preview:classroom:42", Key(42))
}

func TestDecode(t *testing.T) {
	p, err := decode([]byte(`{"classroom_id":7,"maximum_front_groups":2,"groups":[{"group_number":1,"members":[{"id":3,"name":"Ada","gender":"Female","ability_level":"High"}]}]}`))

	require.NoError(t, err)
	require.Equal(t, int64(7), p.ClassroomID)
	require.Len(t, p.Groups, 1)
	require.True(t, p.Groups[0].HasMember(3))

	_, err = decode([]byte("{"))
	require.ErrorContains(t, err, "preview: decode")
}

func TestStorePutGet(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, 30*time.Minute)

	p := Preview{
		ClassroomID:        5,
		MaximumFrontGroups: 2,
		Attempts:           17,
		Groups: []grouping.Group{{Number: 1, IsFrontGroup: true, Members: []grouping.Student{
			{ID: 1, Name: "Ada", Gender: grouping.Female, Ability: grouping.High, FrontSeatNeeded: true},
		}}},
	}
	require.NoError(t, s.Put(ctx, p))
	require.True(t, mr.Exists(Key(5)))
	require.Equal(t, 30*time.Minute, mr.TTL(Key(5)))

	got, err := s.Get(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 17, got.Attempts)
	require.Equal(t, p.Groups[0].Members, got.Groups[0].Members)
	require.True(t, got.Groups[0].IsFrontGroup)

	p.Attempts = 3
	require.NoError(t, s.Put(ctx, p))
	got, err = s.Get(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 3, got.Attempts)
}

func TestStoreMiss(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Minute)

	_, err := s.Get(ctx, 9)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, Preview{ClassroomID: 9}))
	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, 9)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Minute)

	require.NoError(t, s.Put(ctx, Preview{ClassroomID: 4}))
	require.NoError(t, s.Delete(ctx, 4))
	require.False(t, mr.Exists(Key(4)))
	_, err := s.Get(ctx, 4)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, 4))
}

func TestStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Minute)
	mr.Close()

	require.Error(t, s.Ping(ctx))
	_, err := s.Get(ctx, 1)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
