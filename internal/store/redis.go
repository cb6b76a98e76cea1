package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Afhammirza1/sharingapp/internal/models"
)

// RedisStore keeps each room as a JSON document, messages in a per-room
// sorted set scored by timestamp, and signals in a per-room stream.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Client returns the underlying client.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Backend returns the backend name.
func (s *RedisStore) Backend() string {
	return "redis"
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// roomKey returns the key for a room document.
func roomKey(code string) string {
	return fmt.Sprintf("room:%s", code)
}

// roomMessagesKey returns the key for a room's message sorted set.
func roomMessagesKey(code string) string {
	return fmt.Sprintf("room:%s:messages", code)
}

// roomSignalsKey returns the key for a room's signal stream.
func roomSignalsKey(code string) string {
	return fmt.Sprintf("room:%s:signals", code)
}

const probeKey = "probe:connection"

// Probe writes and reads back a marker key.
func (s *RedisStore) Probe(ctx context.Context) (*ProbeResult, error) {
	start := time.Now()
	stamp := now().Format(time.RFC3339Nano)

	if err := s.client.Set(ctx, probeKey, stamp, time.Hour).Err(); err != nil {
		return nil, wrap("write probe", err)
	}
	got, err := s.client.Get(ctx, probeKey).Result()
	if err != nil {
		return nil, wrap("read probe", err)
	}
	if got != stamp {
		return nil, fmt.Errorf("read probe: got %q, wrote %q", got, stamp)
	}

	return &ProbeResult{
		Backend: s.Backend(),
		Latency: time.Since(start).String(),
		Details: map[string]string{"redis": "connected"},
	}, nil
}

// CreateRoom creates a new room.
func (s *RedisStore) CreateRoom(ctx context.Context, caller models.Caller, code string) (*models.Room, error) {
	return createRoom(ctx, caller, code, s.insertRoom)
}

func (s *RedisStore) insertRoom(ctx context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, roomKey(room.Code), data, 0).Result()
	if err != nil {
		return wrap("insert room", err)
	}
	if !created {
		return ErrRoomExists
	}
	return nil
}

// GetRoom retrieves a room by code.
func (s *RedisStore) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRoomNotFound
		}
		return nil, wrap("get room", err)
	}

	var room models.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, wrap("decode room", err)
	}
	if room.Files == nil {
		room.Files = []models.FileMeta{}
	}
	return &room, nil
}

// AppendFile appends file metadata under WATCH, retrying when another
// writer changed the room between the read and the write.
func (s *RedisStore) AppendFile(ctx context.Context, caller models.Caller, code string, upload models.FileUpload) (*models.FileMeta, error) {
	file := newFile(caller, upload)
	key := roomKey(code)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrRoomNotFound
			}
			return err
		}

		var room models.Room
		if err := json.Unmarshal(data, &room); err != nil {
			return err
		}
		room.Files = append(room.Files, file)

		updated, err := json.Marshal(room)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxAppendRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return &file, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrRoomNotFound) {
			return nil, err
		}
		return nil, wrap("append file", err)
	}
	return nil, wrap("append file", fmt.Errorf("gave up after %d conflicting writes", maxAppendRetries))
}

// AddMessage stores a message in the room's sorted set.
func (s *RedisStore) AddMessage(ctx context.Context, caller models.Caller, code, text, sender string) (*models.Message, error) {
	if err := s.roomExists(ctx, code); err != nil {
		return nil, err
	}

	msg := newMessage(caller, text, sender)

	// Serialize message
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	// Members with equal scores order lexically; the encoding starts with
	// the time-ordered ID, which keeps insertion order inside a millisecond.
	err = s.client.ZAdd(ctx, roomMessagesKey(code), redis.Z{
		Score:  float64(msg.Timestamp.UnixMilli()),
		Member: string(data),
	}).Err()
	if err != nil {
		return nil, wrap("insert message", err)
	}
	return msg, nil
}

// ListMessages returns up to limit messages, oldest first.
func (s *RedisStore) ListMessages(ctx context.Context, code string, limit int) ([]models.Message, error) {
	if err := s.roomExists(ctx, code); err != nil {
		return nil, err
	}

	results, err := s.client.ZRange(ctx, roomMessagesKey(code), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, wrap("list messages", err)
	}

	messages := make([]models.Message, 0, len(results))
	for _, data := range results {
		var msg models.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			return nil, wrap("decode message", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// AddSignal appends a signal to the room's stream. The stream entry ID
// becomes the signal ID.
func (s *RedisStore) AddSignal(ctx context.Context, caller models.Caller, code string, payload map[string]any) (*models.Signal, error) {
	if err := s.roomExists(ctx, code); err != nil {
		return nil, err
	}

	sig := newSignal(caller, code, payload)
	data, err := json.Marshal(sig.Payload)
	if err != nil {
		return nil, err
	}

	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: roomSignalsKey(code),
		Values: map[string]any{
			"payload":                   string(data),
			models.SignalPostedByField:  sig.PostedBy,
			models.SignalTimestampField: sig.Timestamp.Format(time.RFC3339Nano),
		},
	}).Result()
	if err != nil {
		return nil, wrap("insert signal", err)
	}
	sig.ID = id
	return sig, nil
}

func (s *RedisStore) roomExists(ctx context.Context, code string) error {
	n, err := s.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return wrap("lookup room", err)
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
