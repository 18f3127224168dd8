package storage

import (
	"context"
	"errors"

	"duochat/internal/chat"
	"duochat/internal/storage/zapadapter"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Store implements the chat store capabilities (users, chats, messages) on
// top of PostgreSQL.
type Store struct {
	logger *zap.SugaredLogger
	db     *pgxpool.Pool
}

// New sets provided zap.Logger via zapadapter to pgxpool.Pool and returns
// instance of Store struct
func New(logger *zap.SugaredLogger, cfg Config, opts ...Option) (*Store, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}
	config.ConnConfig.Logger = zapadapter.NewLogger(logger.Desugar())

	for _, opt := range opts {
		opt.apply(config)
	}

	pool, err := pgxpool.ConnectConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	return &Store{
		logger: logger,
		db:     pool,
	}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.db.Close()
}

// InitSchema creates the tables and indexes if they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	sql := `create table if not exists users (
				id         text primary key,
				first_name text not null default '',
				last_name  text not null default '',
				email      text not null default '',
				last_seen  timestamptz
			);

			create table if not exists chats (
				id           text primary key,
				sender_id    text not null references users (id),
				recipient_id text not null references users (id),
				created_at   timestamptz not null,
				check (sender_id <> recipient_id)
			);

			create table if not exists messages (
				id          bigserial primary key,
				chat_id     text not null references chats (id),
				sender_id   text not null,
				receiver_id text not null,
				content     text,
				type        text not null,
				state       text not null,
				media_path  text,
				created_at  timestamptz not null
			);

			create index if not exists idx_messages_chat_id on messages (chat_id);
			create index if not exists idx_chats_sender on chats (sender_id);
			create index if not exists idx_chats_recipient on chats (recipient_id);`

	_, err := s.db.Exec(ctx, sql)
	return err
}

// UserByID returns the user with the given id.
func (s *Store) UserByID(ctx context.Context, id string) (*chat.User, error) {
	sql := "select id, first_name, last_name, email, last_seen from users where id = $1"

	var u chat.User
	var lastSeen pgtype.Timestamptz
	err := s.db.QueryRow(ctx, sql, id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &lastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrUserNotExist
		}
		return nil, err
	}

	if lastSeen.Status == pgtype.Present {
		t := lastSeen.Time
		u.LastSeen = &t
	}

	return &u, nil
}

// SaveUser upserts a user record.
func (s *Store) SaveUser(ctx context.Context, u chat.User) error {
	s.logger.Debugf("Upserting user (id: %s)", u.ID)

	lastSeen := pgtype.Timestamptz{Status: pgtype.Null}
	if u.LastSeen != nil {
		lastSeen = pgtype.Timestamptz{Time: *u.LastSeen, Status: pgtype.Present}
	}

	sql := `insert into users (id, first_name, last_name, email, last_seen)
			values ($1, $2, $3, $4, $5)
			on conflict (id) do update
			set first_name = excluded.first_name,
				last_name  = excluded.last_name,
				email      = excluded.email,
				last_seen  = excluded.last_seen`
	_, err := s.db.Exec(ctx, sql, u.ID, u.FirstName, u.LastName, u.Email, lastSeen)
	return err
}

// ChatByID returns the chat with the given id.
func (s *Store) ChatByID(ctx context.Context, id string) (*chat.Chat, error) {
	sql := "select id, sender_id, recipient_id, created_at from chats where id = $1"

	var c chat.Chat
	err := s.db.QueryRow(ctx, sql, id).Scan(&c.ID, &c.SenderID, &c.RecipientID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrChatNotExist
		}
		return nil, err
	}

	return &c, nil
}

// ChatByParticipants returns the chat between the two users, treating the
// pair as unordered.
func (s *Store) ChatByParticipants(ctx context.Context, a, b string) (*chat.Chat, error) {
	sql := `select id, sender_id, recipient_id, created_at
			  from chats
			 where (sender_id = $1 and recipient_id = $2)
				or (sender_id = $2 and recipient_id = $1)`

	var c chat.Chat
	err := s.db.QueryRow(ctx, sql, a, b).Scan(&c.ID, &c.SenderID, &c.RecipientID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrChatNotExist
		}
		return nil, err
	}

	return &c, nil
}

// ChatsByUserID returns every chat the user participates in, either role.
func (s *Store) ChatsByUserID(ctx context.Context, userID string) ([]chat.Chat, error) {
	s.logger.Debugf("Retrieving chats for user (id: %s)", userID)

	sql := `select id, sender_id, recipient_id, created_at
			  from chats
			 where sender_id = $1 or recipient_id = $1
			 order by created_at`

	rows, err := s.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []chat.Chat
	for rows.Next() {
		var c chat.Chat
		if err := rows.Scan(&c.ID, &c.SenderID, &c.RecipientID, &c.CreatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	s.logger.Debugf("Retrieved %d chats", len(chats))

	return chats, nil
}

// SaveChat inserts a new chat record.
func (s *Store) SaveChat(ctx context.Context, c chat.Chat) error {
	s.logger.Debugf("Creating chat (id: %s) with users (%s, %s)", c.ID, c.SenderID, c.RecipientID)

	sql := "insert into chats (id, sender_id, recipient_id, created_at) values ($1, $2, $3, $4)"
	_, err := s.db.Exec(ctx, sql, c.ID, c.SenderID, c.RecipientID, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return chat.ErrUserNotExist
		}
		return err
	}

	return nil
}

// SaveMessage inserts a message and returns its store-assigned id.
func (s *Store) SaveMessage(ctx context.Context, m *chat.Message) (int64, error) {
	s.logger.Debugf("Creating message from user (id: %s) in chat (id: %s)", m.SenderID, m.ChatID)

	content := pgtype.Text{Status: pgtype.Null}
	if m.Content != "" {
		content = pgtype.Text{String: m.Content, Status: pgtype.Present}
	}
	mediaPath := pgtype.Text{Status: pgtype.Null}
	if m.MediaPath != "" {
		mediaPath = pgtype.Text{String: m.MediaPath, Status: pgtype.Present}
	}

	var id int64
	sql := `insert into messages (chat_id, sender_id, receiver_id, content, type, state, media_path, created_at)
			values ($1, $2, $3, $4, $5, $6, $7, $8)
			returning id`
	err := s.db.QueryRow(ctx, sql,
		m.ChatID, m.SenderID, m.ReceiverID, content, string(m.Type), string(m.State), mediaPath, m.CreatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return 0, chat.ErrChatNotExist
		}
		return 0, err
	}

	m.ID = id

	return id, nil
}

// MessagesByChatID returns all chat messages sorted by creation time,
// earliest first.
func (s *Store) MessagesByChatID(ctx context.Context, chatID string) ([]chat.Message, error) {
	s.logger.Debugf("Retrieving messages for chat (id: %s)", chatID)

	sql := `select id, chat_id, sender_id, receiver_id, content, type, state, media_path, created_at
			  from messages
			 where chat_id = $1
			 order by created_at, id`

	rows, err := s.db.Query(ctx, sql, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var m chat.Message
		var content, mediaPath pgtype.Text
		var msgType, state string
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.ReceiverID, &content, &msgType, &state, &mediaPath, &m.CreatedAt); err != nil {
			return nil, err
		}
		if content.Status == pgtype.Present {
			m.Content = content.String
		}
		if mediaPath.Status == pgtype.Present {
			m.MediaPath = mediaPath.String
		}
		m.Type = chat.MessageType(msgType)
		m.State = chat.MessageState(state)
		messages = append(messages, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	s.logger.Debugf("Retrieved %d messages", len(messages))

	return messages, nil
}

// SetMessagesStateByChatID moves every message of the chat to the given state in one
// statement. The single scoped UPDATE is what makes the bulk transition
// atomic with respect to concurrent readers.
func (s *Store) SetMessagesStateByChatID(ctx context.Context, chatID string, state chat.MessageState) error {
	s.logger.Debugf("Setting messages of chat (id: %s) to state %s", chatID, state)

	sql := "update messages set state = $2 where chat_id = $1"
	_, err := s.db.Exec(ctx, sql, chatID, string(state))
	return err
}
