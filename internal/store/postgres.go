package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Afhammirza1/sharingapp/internal/models"
)

// pgForeignKeyViolation is the SQLSTATE for foreign_key_violation.
const pgForeignKeyViolation = "23503"

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Backend returns the backend name.
func (s *PostgresStore) Backend() string {
	return "postgres"
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Probe writes and reads back a marker row.
func (s *PostgresStore) Probe(ctx context.Context) (*ProbeResult, error) {
	start := time.Now()

	var probedAt time.Time
	err := s.pool.QueryRow(ctx, `
		INSERT INTO connection_probes (name, probed_at) VALUES ('connection', $1)
		ON CONFLICT (name) DO UPDATE SET probed_at = EXCLUDED.probed_at
		RETURNING probed_at
	`, now()).Scan(&probedAt)
	if err != nil {
		return nil, wrap("probe", err)
	}

	stat := s.pool.Stat()
	return &ProbeResult{
		Backend: s.Backend(),
		Latency: time.Since(start).String(),
		Details: map[string]string{
			"database":    "connected",
			"total_conns": strconv.FormatInt(int64(stat.TotalConns()), 10),
		},
	}, nil
}

// CreateRoom creates a new room.
func (s *PostgresStore) CreateRoom(ctx context.Context, caller models.Caller, code string) (*models.Room, error) {
	return createRoom(ctx, caller, code, s.insertRoom)
}

func (s *PostgresStore) insertRoom(ctx context.Context, room *models.Room) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO rooms (code, created_at, created_by, users, files, active)
		VALUES ($1, $2, $3, $4, '[]'::jsonb, TRUE)
		ON CONFLICT (code) DO NOTHING
	`, room.Code, room.CreatedAt, room.CreatedBy, room.Users)
	if err != nil {
		return wrap("insert room", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomExists
	}
	return nil
}

// GetRoom retrieves a room by code.
func (s *PostgresStore) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	room := &models.Room{}
	var files []byte

	err := s.pool.QueryRow(ctx, `
		SELECT code, created_at, created_by, users, files, active
		FROM rooms WHERE code = $1
	`, code).Scan(
		&room.Code,
		&room.CreatedAt,
		&room.CreatedBy,
		&room.Users,
		&files,
		&room.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, wrap("get room", err)
	}

	room.CreatedAt = room.CreatedAt.UTC()
	if err := json.Unmarshal(files, &room.Files); err != nil {
		return nil, wrap("decode files", err)
	}
	if room.Users == nil {
		room.Users = []string{}
	}
	return room, nil
}

// AppendFile appends file metadata with a single jsonb concatenation, so
// concurrent appends never overwrite each other.
func (s *PostgresStore) AppendFile(ctx context.Context, caller models.Caller, code string, upload models.FileUpload) (*models.FileMeta, error) {
	file := newFile(caller, upload)
	data, err := json.Marshal(file)
	if err != nil {
		return nil, err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE rooms SET files = files || jsonb_build_array($2::jsonb)
		WHERE code = $1
	`, code, string(data))
	if err != nil {
		return nil, wrap("append file", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrRoomNotFound
	}
	return &file, nil
}

// AddMessage inserts a message into the room's message table.
func (s *PostgresStore) AddMessage(ctx context.Context, caller models.Caller, code, text, sender string) (*models.Message, error) {
	msg := newMessage(caller, text, sender)

	err := s.pool.QueryRow(ctx, `
		INSERT INTO room_messages (id, room_code, text, sender, posted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, msg.ID, code, msg.Text, msg.Sender, msg.PostedBy, msg.Timestamp).Scan(&msg.Timestamp)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, ErrRoomNotFound
		}
		return nil, wrap("insert message", err)
	}
	msg.Timestamp = msg.Timestamp.UTC()
	return msg, nil
}

// ListMessages returns up to limit messages, oldest first.
func (s *PostgresStore) ListMessages(ctx context.Context, code string, limit int) ([]models.Message, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE code = $1)`, code).Scan(&exists); err != nil {
		return nil, wrap("lookup room", err)
	}
	if !exists {
		return nil, ErrRoomNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, text, sender, posted_by, created_at
		FROM room_messages
		WHERE room_code = $1
		ORDER BY created_at, seq
		LIMIT $2
	`, code, limit)
	if err != nil {
		return nil, wrap("list messages", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.Text, &msg.Sender, &msg.PostedBy, &msg.Timestamp); err != nil {
			return nil, wrap("list messages", err)
		}
		msg.Timestamp = msg.Timestamp.UTC()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list messages", err)
	}
	return messages, nil
}

// AddSignal inserts a signal into the room's signal table.
func (s *PostgresStore) AddSignal(ctx context.Context, caller models.Caller, code string, payload map[string]any) (*models.Signal, error) {
	sig := newSignal(caller, code, payload)
	data, err := json.Marshal(sig.Payload)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO room_signals (id, room_code, payload, posted_by, created_at)
		VALUES ($1, $2, $3::jsonb, $4, $5)
	`, sig.ID, code, string(data), sig.PostedBy, sig.Timestamp)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, ErrRoomNotFound
		}
		return nil, wrap("insert signal", err)
	}
	return sig, nil
}

func isPgForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
