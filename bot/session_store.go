package bot

import (
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/SANATANIxAPI/pic/tool"
	"github.com/SANATANIxAPI/pic/types"
)

const DefaultSessionTTL = 300 * time.Second

// SessionStore owns the user-to-session mapping. It is the sole writer and
// deleter of the temp file paths it records: Create removes a superseded
// session's file, Consume hands the file over to exactly one caller, and the
// TTL cache drops abandoned entries (their files are reclaimed by the temp
// folder sweep).
type SessionStore struct {
	mu       sync.RWMutex
	sessions *ttlworker.Cache[int64, types.Session]
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: ttlworker.NewCache[int64, types.Session](ttl),
	}
}

// Create installs the session, replacing any prior session for the same
// user. The replaced session's temp file is deleted first so its path is
// not leaked by the overwrite.
func (s *SessionStore) Create(sess types.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old := s.sessions.Get(sess.UserID); old.Path != "" && old.Path != sess.Path {
		tool.RemoveIfExists(old.Path)
		tool.DefaultLogger.Debugf("Replaced pending session for user %d", sess.UserID)
	}
	s.sessions.Set(sess.UserID, sess)
}

// Consume removes and returns the user's session. A miss means the session
// expired or was already consumed; callers treat that as a no-op, not an
// error. The caller takes over deleting the returned session's temp file.
func (s *SessionStore) Consume(userID int64) (types.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions.Get(userID)
	if sess.Path == "" {
		return types.Session{}, false
	}
	s.sessions.Delete(userID)
	return sess, true
}

// Peek returns the user's session without consuming it.
func (s *SessionStore) Peek(userID int64) (types.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.sessions.Get(userID)
	return sess, sess.Path != ""
}
