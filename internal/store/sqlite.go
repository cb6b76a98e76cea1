package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Afhammirza1/sharingapp/internal/models"
)

// SQLiteStore handles SQLite database operations.
// Timestamps are stored as unix nanoseconds so they order numerically.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/sharenear.db"; ":memory:" opens a
// private in-memory database.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/sharenear.db"
	}

	dsn := dbPath + "?_foreign_keys=on&_busy_timeout=5000"
	if dbPath != ":memory:" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: sqlite has a single writer, and an in-memory database
	// exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS rooms (
		code TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		created_by TEXT NOT NULL,
		users TEXT NOT NULL DEFAULT '[]',
		files TEXT NOT NULL DEFAULT '[]',
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		room_code TEXT NOT NULL REFERENCES rooms(code),
		text TEXT NOT NULL,
		sender TEXT NOT NULL,
		posted_by TEXT NOT NULL,
		ts INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS signals (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		room_code TEXT NOT NULL REFERENCES rooms(code),
		payload TEXT NOT NULL,
		posted_by TEXT NOT NULL,
		ts INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS probes (
		name TEXT PRIMARY KEY,
		ts INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_room_ts ON messages(room_code, ts, seq);
	CREATE INDEX IF NOT EXISTS idx_signals_room_ts ON signals(room_code, ts, seq);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Backend returns the backend name.
func (s *SQLiteStore) Backend() string {
	return "sqlite"
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Probe writes and reads back a marker row.
func (s *SQLiteStore) Probe(ctx context.Context) (*ProbeResult, error) {
	start := time.Now()
	ts := now().UnixNano()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO probes (name, ts) VALUES ('connection', ?)
		ON CONFLICT(name) DO UPDATE SET ts = excluded.ts
	`, ts)
	if err != nil {
		return nil, wrap("write probe", err)
	}

	var readBack int64
	if err := s.db.QueryRowContext(ctx, `SELECT ts FROM probes WHERE name = 'connection'`).Scan(&readBack); err != nil {
		return nil, wrap("read probe", err)
	}

	return &ProbeResult{
		Backend: s.Backend(),
		Latency: time.Since(start).String(),
		Details: map[string]string{"database": "connected"},
	}, nil
}

// CreateRoom creates a new room.
func (s *SQLiteStore) CreateRoom(ctx context.Context, caller models.Caller, code string) (*models.Room, error) {
	return createRoom(ctx, caller, code, s.insertRoom)
}

func (s *SQLiteStore) insertRoom(ctx context.Context, room *models.Room) error {
	users, err := json.Marshal(room.Users)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (code, created_at, created_by, users, files, active)
		VALUES (?, ?, ?, ?, '[]', 1)
		ON CONFLICT(code) DO NOTHING
	`, room.Code, room.CreatedAt.UnixNano(), room.CreatedBy, string(users))
	if err != nil {
		return wrap("insert room", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return wrap("insert room", err)
	}
	if n == 0 {
		return ErrRoomExists
	}
	return nil
}

// GetRoom retrieves a room by code.
func (s *SQLiteStore) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	room := &models.Room{}
	var createdAt int64
	var users, files string

	err := s.db.QueryRowContext(ctx, `
		SELECT code, created_at, created_by, users, files, active
		FROM rooms WHERE code = ?
	`, code).Scan(
		&room.Code,
		&createdAt,
		&room.CreatedBy,
		&users,
		&files,
		&room.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, wrap("get room", err)
	}

	room.CreatedAt = time.Unix(0, createdAt).UTC()
	if err := json.Unmarshal([]byte(users), &room.Users); err != nil {
		return nil, wrap("decode users", err)
	}
	if err := json.Unmarshal([]byte(files), &room.Files); err != nil {
		return nil, wrap("decode files", err)
	}
	return room, nil
}

// AppendFile appends file metadata to the room in a single statement.
func (s *SQLiteStore) AppendFile(ctx context.Context, caller models.Caller, code string, upload models.FileUpload) (*models.FileMeta, error) {
	file := newFile(caller, upload)
	data, err := json.Marshal(file)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE rooms SET files = json_insert(files, '$[#]', json(?)) WHERE code = ?
	`, string(data), code)
	if err != nil {
		return nil, wrap("append file", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, wrap("append file", err)
	}
	if n == 0 {
		return nil, ErrRoomNotFound
	}
	return &file, nil
}

// AddMessage inserts a message into the room's message collection.
func (s *SQLiteStore) AddMessage(ctx context.Context, caller models.Caller, code, text, sender string) (*models.Message, error) {
	msg := newMessage(caller, text, sender)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, room_code, text, sender, posted_by, ts)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, code, msg.Text, msg.Sender, msg.PostedBy, msg.Timestamp.UnixNano())
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrRoomNotFound
		}
		return nil, wrap("insert message", err)
	}
	return msg, nil
}

// ListMessages returns up to limit messages, oldest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, code string, limit int) ([]models.Message, error) {
	if err := s.roomExists(ctx, code); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, sender, posted_by, ts
		FROM messages
		WHERE room_code = ?
		ORDER BY ts, seq
		LIMIT ?
	`, code, limit)
	if err != nil {
		return nil, wrap("list messages", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		var ts int64
		if err := rows.Scan(&msg.ID, &msg.Text, &msg.Sender, &msg.PostedBy, &ts); err != nil {
			return nil, wrap("list messages", err)
		}
		msg.Timestamp = time.Unix(0, ts).UTC()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list messages", err)
	}
	return messages, nil
}

// AddSignal inserts a signal into the room's signal collection.
func (s *SQLiteStore) AddSignal(ctx context.Context, caller models.Caller, code string, payload map[string]any) (*models.Signal, error) {
	sig := newSignal(caller, code, payload)
	data, err := json.Marshal(sig.Payload)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO signals (id, room_code, payload, posted_by, ts)
		VALUES (?, ?, ?, ?, ?)
	`, sig.ID, code, string(data), sig.PostedBy, sig.Timestamp.UnixNano())
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrRoomNotFound
		}
		return nil, wrap("insert signal", err)
	}
	return sig, nil
}

func (s *SQLiteStore) roomExists(ctx context.Context, code string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE code = ?`, code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoomNotFound
	}
	if err != nil {
		return wrap("lookup room", err)
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
