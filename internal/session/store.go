package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/pkg/redis"
)

var ErrNoSession = errors.New("session not found")

// Store keeps sessions in redis under an opaque token so nothing about the
// principal leaks into the cookie. Teacher and student sessions carry
// different TTLs.
type Store struct {
	redis      redis.RedisAdapter
	teacherTTL time.Duration
	studentTTL time.Duration
}

func NewStore(adapter redis.RedisAdapter, teacherTTL, studentTTL time.Duration) *Store {
	return &Store{
		redis:      adapter,
		teacherTTL: teacherTTL,
		studentTTL: studentTTL,
	}
}

func (s *Store) key(token string) string {
	return "session:" + token
}

// TTL reports the lifetime for the session's principal type, also used for
// the cookie expiry.
func (s *Store) TTL(sess *Session) time.Duration {
	if sess.UserType == UserTypeTeacher {
		return s.teacherTTL
	}
	return s.studentTTL
}

// Create assigns the session a fresh token and persists it. The token is
// what goes into the cookie.
func (s *Store) Create(sess *Session) (string, error) {
	sess.Token = uuid.NewString()
	if err := s.write(sess); err != nil {
		return "", err
	}
	return sess.Token, nil
}

func (s *Store) Get(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	raw, err := s.redis.Get(s.key(token))
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	if sess.Cart == nil {
		sess.Cart = model.Cart{}
	}
	return &sess, nil
}

// Save persists in-place mutations such as cart changes, refreshing the TTL.
func (s *Store) Save(sess *Session) error {
	if sess.Token == "" {
		return ErrNoSession
	}
	return s.write(sess)
}

func (s *Store) Delete(token string) error {
	if token == "" {
		return nil
	}
	return s.redis.Del(s.key(token))
}

func (s *Store) write(sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.redis.Set(s.key(sess.Token), raw, s.TTL(sess))
}
