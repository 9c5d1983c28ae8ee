// Package db persists chat sessions and their conversation turns in an
// embedded badger store.
package db

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/gauss-analytics/gauss-assistant/models"
)

// Key layout:
//
//	session:<userID>:<sessionID> -> models.ChatSession
//	turns:<sessionID>            -> []models.ConversationTurn
const (
	sessionKeyPrefix = "session:"
	turnsKeyPrefix   = "turns:"
)

type DB struct {
	badgerDB *badger.DB
}

func New(dbPath string) (*DB, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // badger's own logging is too chatty for a service log

	badgerDB, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DB{badgerDB: badgerDB}, nil
}

// NewInMemory opens a store that lives only for the process lifetime.
func NewInMemory() (*DB, error) {
	badgerDB, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return &DB{badgerDB: badgerDB}, nil
}

func (d *DB) Close() error {
	return d.badgerDB.Close()
}

func sessionKey(userID, sessionID string) []byte {
	return []byte(sessionKeyPrefix + userID + ":" + sessionID)
}

func turnsKey(sessionID string) []byte {
	return []byte(turnsKeyPrefix + sessionID)
}

// CreateSession stores a new empty session for the user.
func (d *DB) CreateSession(userID, title string) (*models.ChatSession, error) {
	now := time.Now().UTC()
	session := &models.ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.putSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (d *DB) putSession(session *models.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(session.UserID, session.ID), data)
	})
}

// GetSession returns the session, or nil when it does not exist.
func (d *DB) GetSession(userID, sessionID string) (*models.ChatSession, error) {
	var session *models.ChatSession
	err := d.badgerDB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(userID, sessionID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			session = &models.ChatSession{}
			return json.Unmarshal(val, session)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return session, nil
}

// ListSessions returns the user's sessions, most recently updated first.
func (d *DB) ListSessions(userID string) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionKeyPrefix + userID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var session models.ChatSession
				if err := json.Unmarshal(val, &session); err != nil {
					return err
				}
				sessions = append(sessions, session)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// EnsureDefaultSession returns the user's most recent session, creating
// one when none exists yet.
func (d *DB) EnsureDefaultSession(userID string) (*models.ChatSession, error) {
	sessions, err := d.ListSessions(userID)
	if err != nil {
		return nil, err
	}
	if len(sessions) > 0 {
		return &sessions[0], nil
	}
	return d.CreateSession(userID, "Nueva conversación")
}

// GetTurns loads the session's conversation memory in append order.
func (d *DB) GetTurns(sessionID string) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn
	err := d.badgerDB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(turnsKey(sessionID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &turns)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}
	return turns, nil
}

// AppendTurns adds turns to the session's memory and bumps the session's
// UpdatedAt timestamp.
func (d *DB) AppendTurns(session *models.ChatSession, turns ...models.ConversationTurn) error {
	existing, err := d.GetTurns(session.ID)
	if err != nil {
		return err
	}
	existing = append(existing, turns...)
	data, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	err = d.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set(turnsKey(session.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store conversation: %w", err)
	}
	session.UpdatedAt = time.Now().UTC()
	return d.putSession(session)
}

// ResetSession wipes the session's conversation memory in one step.
func (d *DB) ResetSession(sessionID string) error {
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		err := txn.Delete(turnsKey(sessionID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

// DeleteSession removes the session and its conversation memory.
func (d *DB) DeleteSession(userID, sessionID string) error {
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(sessionKey(userID, sessionID)); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Delete(turnsKey(sessionID)); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		return nil
	})
}
