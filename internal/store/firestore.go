package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Afhammirza1/sharingapp/internal/models"
)

// Firestore layout: rooms/{code} with embedded files,
// rooms/{code}/messages/{id} and rooms/{code}/signals/{id}.
const (
	roomsCollection    = "rooms"
	messagesCollection = "messages"
	signalsCollection  = "signals"
	probeCollection    = "test"
	probeDocument      = "connection"
)

// FirestoreStore handles Cloud Firestore document operations.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Firestore client for the project. An empty
// credentialsFile falls back to application default credentials (or the
// emulator when FIRESTORE_EMULATOR_HOST is set).
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}

	return &FirestoreStore{client: client}, nil
}

// Backend returns the backend name.
func (s *FirestoreStore) Backend() string {
	return "firestore"
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// Ping reads at most one room to verify connectivity.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(roomsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

// Probe writes a marker document and reads it back.
func (s *FirestoreStore) Probe(ctx context.Context) (*ProbeResult, error) {
	start := time.Now()
	ref := s.client.Collection(probeCollection).Doc(probeDocument)

	_, err := ref.Set(ctx, map[string]any{
		"timestamp": firestore.ServerTimestamp,
		"test":      true,
	})
	if err != nil {
		return nil, wrap("write probe", err)
	}
	if _, err := ref.Get(ctx); err != nil {
		return nil, wrap("read probe", err)
	}

	return &ProbeResult{
		Backend: s.Backend(),
		Latency: time.Since(start).String(),
		Details: map[string]string{"firestore": "connected"},
	}, nil
}

func (s *FirestoreStore) room(code string) *firestore.DocumentRef {
	return s.client.Collection(roomsCollection).Doc(code)
}

// CreateRoom creates a new room document. Create fails if the document
// already exists, so an existing room is never overwritten.
func (s *FirestoreStore) CreateRoom(ctx context.Context, caller models.Caller, code string) (*models.Room, error) {
	return createRoom(ctx, caller, code, s.insertRoom)
}

func (s *FirestoreStore) insertRoom(ctx context.Context, room *models.Room) error {
	if _, err := s.room(room.Code).Create(ctx, room); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrRoomExists
		}
		return wrap("insert room", err)
	}
	return nil
}

// GetRoom retrieves a room document.
func (s *FirestoreStore) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	snap, err := s.room(code).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrRoomNotFound
		}
		return nil, wrap("get room", err)
	}

	var room models.Room
	if err := snap.DataTo(&room); err != nil {
		return nil, wrap("decode room", err)
	}
	if room.Files == nil {
		room.Files = []models.FileMeta{}
	}
	if room.Users == nil {
		room.Users = []string{}
	}
	return &room, nil
}

// AppendFile appends file metadata with ArrayUnion, an atomic server-side
// array append. Update fails with NotFound when the room does not exist.
func (s *FirestoreStore) AppendFile(ctx context.Context, caller models.Caller, code string, upload models.FileUpload) (*models.FileMeta, error) {
	file := newFile(caller, upload)

	_, err := s.room(code).Update(ctx, []firestore.Update{
		{Path: "files", Value: firestore.ArrayUnion(file)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrRoomNotFound
		}
		return nil, wrap("append file", err)
	}
	return &file, nil
}

// AddMessage adds a message document to the room's messages subcollection.
func (s *FirestoreStore) AddMessage(ctx context.Context, caller models.Caller, code, text, sender string) (*models.Message, error) {
	if err := s.roomExists(ctx, code); err != nil {
		return nil, err
	}

	// The ULID is both the document ID and the tie-breaker for messages
	// sharing a timestamp.
	msg := newMessage(caller, text, sender)
	_, err := s.room(code).Collection(messagesCollection).Doc(msg.ID).Create(ctx, msg)
	if err != nil {
		return nil, wrap("insert message", err)
	}
	return msg, nil
}

// ListMessages returns up to limit messages ordered by timestamp, then ID.
func (s *FirestoreStore) ListMessages(ctx context.Context, code string, limit int) ([]models.Message, error) {
	if err := s.roomExists(ctx, code); err != nil {
		return nil, err
	}

	iter := s.room(code).Collection(messagesCollection).
		OrderBy("timestamp", firestore.Asc).
		OrderBy("id", firestore.Asc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	messages := make([]models.Message, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, wrap("list messages", err)
		}

		var msg models.Message
		if err := snap.DataTo(&msg); err != nil {
			return nil, wrap("decode message", err)
		}
		if msg.ID == "" {
			msg.ID = snap.Ref.ID
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// AddSignal adds the payload, with the server fields merged in, to the
// room's signals subcollection.
func (s *FirestoreStore) AddSignal(ctx context.Context, caller models.Caller, code string, payload map[string]any) (*models.Signal, error) {
	if err := s.roomExists(ctx, code); err != nil {
		return nil, err
	}

	sig := newSignal(caller, code, payload)
	ref, _, err := s.room(code).Collection(signalsCollection).Add(ctx, firestoreValue(sig.Document()))
	if err != nil {
		return nil, wrap("insert signal", err)
	}
	sig.ID = ref.ID
	return sig, nil
}

func (s *FirestoreStore) roomExists(ctx context.Context, code string) error {
	if _, err := s.room(code).Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrRoomNotFound
		}
		return wrap("lookup room", err)
	}
	return nil
}

// firestoreValue converts json.Number values, which Firestore cannot
// encode, to int64 when they fit and float64 otherwise.
func firestoreValue(v any) any {
	switch v := v.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = firestoreValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = firestoreValue(e)
		}
		return out
	default:
		return v
	}
}
