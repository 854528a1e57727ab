package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	pushed  []string
	pushKey string
	pushErr error

	popReply []string
	popErr   error
}

func (f *fakeRedis) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.pushKey = key
	for _, v := range values {
		switch b := v.(type) {
		case []byte:
			f.pushed = append(f.pushed, string(b))
		case string:
			f.pushed = append(f.pushed, b)
		}
	}
	return redis.NewIntResult(int64(len(f.pushed)), f.pushErr)
}

func (f *fakeRedis) BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	return redis.NewStringSliceResult(f.popReply, f.popErr)
}

func TestRedisQueue_NilClient(t *testing.T) {
	_, err := NewRedisQueue(nil, "k")
	require.Error(t, err)
}

func TestRedisQueue_DefaultKey(t *testing.T) {
	rdb := &fakeRedis{}
	q, err := NewRedisQueue(rdb, "")
	require.NoError(t, err)

	require.NoError(t, q.Submit(context.Background(), NewTask("https://t.me/x", "alice", "hi")))
	require.Equal(t, "dm:notifications", rdb.pushKey)
}

func TestRedisQueue_SubmitMarshalsTask(t *testing.T) {
	rdb := &fakeRedis{}
	q, err := NewRedisQueue(rdb, "test:queue")
	require.NoError(t, err)

	task := NewTask("https://t.me/bob_tg", "alice", "привет")
	require.NotEmpty(t, task.ID)
	require.NoError(t, q.Submit(context.Background(), task))

	require.Len(t, rdb.pushed, 1)
	var got Task
	require.NoError(t, json.Unmarshal([]byte(rdb.pushed[0]), &got))
	require.Equal(t, task, got)
}

func TestRedisQueue_Receive(t *testing.T) {
	task := NewTask("https://t.me/bob_tg", "alice", "привет")
	data, err := json.Marshal(task)
	require.NoError(t, err)

	rdb := &fakeRedis{popReply: []string{"test:queue", string(data)}}
	q, err := NewRedisQueue(rdb, "test:queue")
	require.NoError(t, err)

	got, err := q.Receive(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, task, *got)
}

func TestRedisQueue_Receive_EmptyQueue(t *testing.T) {
	rdb := &fakeRedis{popErr: redis.Nil}
	q, err := NewRedisQueue(rdb, "test:queue")
	require.NoError(t, err)

	_, err = q.Receive(context.Background(), time.Second)
	require.ErrorIs(t, err, redis.Nil)
}

func TestRedisQueue_Receive_BadReply(t *testing.T) {
	rdb := &fakeRedis{popReply: []string{"only-key"}}
	q, err := NewRedisQueue(rdb, "test:queue")
	require.NoError(t, err)

	_, err = q.Receive(context.Background(), time.Second)
	require.Error(t, err)
}

type memQueue struct {
	tasks chan Task
}

func (m *memQueue) Submit(_ context.Context, t Task) error {
	m.tasks <- t
	return nil
}

func TestAsyncNotifier_SubmitsInBackground(t *testing.T) {
	q := &memQueue{tasks: make(chan Task, 1)}
	n := NewAsyncNotifier(q, time.Second)

	n.Notify("https://t.me/bob_tg", "alice", "hi")

	select {
	case task := <-q.tasks:
		require.Equal(t, "https://t.me/bob_tg", task.TelegramURL)
		require.Equal(t, "alice", task.SenderName)
		require.Equal(t, "hi", task.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("task was not submitted")
	}
}
