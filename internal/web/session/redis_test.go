package session

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis answers the commands used by RedisStorage without a server.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeRedis) DialHook(_ redis.DialHook) redis.DialHook {
	return func(_ context.Context, _, _ string) (net.Conn, error) {
		return nil, assert.AnError
	}
}

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (f *fakeRedis) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()

		args := cmd.Args()

		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := f.data[args[1].(string)]
			if !ok {
				c.SetErr(redis.Nil)

				return redis.Nil
			}

			c.SetVal(v)
		case *redis.StatusCmd:
			f.data[args[1].(string)] = string(args[2].([]byte))
			c.SetVal("OK")
		case *redis.IntCmd:
			var n int64

			for _, k := range args[1:] {
				if _, ok := f.data[k.(string)]; ok {
					delete(f.data, k.(string))
					n++
				}
			}

			c.SetVal(n)
		case *redis.ScanCmd:
			match := ""

			for i := range args {
				if s, ok := args[i].(string); ok && s == "match" {
					match = strings.TrimSuffix(args[i+1].(string), "*")
				}
			}

			var keys []string

			for k := range f.data {
				if strings.HasPrefix(k, match) {
					keys = append(keys, k)
				}
			}

			c.SetVal(keys, 0)
		}

		return nil
	}
}

func newFakeRedisStorage(t *testing.T) (*RedisStorage, *fakeRedis) {
	t.Helper()

	fake := &fakeRedis{data: map[string]string{"other:key": "x"}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(fake)

	return NewRedisStorageFromClient(client, "test:"), fake
}

func TestRedisStorage(t *testing.T) {
	s, fake := newFakeRedisStorage(t)

	v, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Set("a", []byte(`{"user_id":1}`), time.Minute))
	require.NoError(t, s.Set("b", []byte("2"), 0))
	require.NoError(t, s.Set("", []byte("ignored"), 0))

	v, err = s.Get("a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":1}`, string(v))
	assert.Contains(t, fake.data, "test:a")

	require.NoError(t, s.Delete("a"))

	v, err = s.Get("a")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Reset())
	assert.Equal(t, map[string]string{"other:key": "x"}, fake.data)
}

func TestNewRedisStorageRejectsBadURL(t *testing.T) {
	_, err := NewRedisStorage("http://localhost")
	require.Error(t, err)

	s, err := NewRedisStorage("redis://localhost:6379/0")
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
