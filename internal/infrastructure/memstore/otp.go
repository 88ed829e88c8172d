package memstore

import (
	"sync"
	"time"
)

// OTPRecord is a pending one-time code for a single email address.
// Cooldown is measured from IssuedAt, validity from ExpiresAt; the two are
// independent so neither constant has to be derived from the other.
type OTPRecord struct {
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// OTPStore is an in-process map of normalized email -> pending OTP record.
// It is constructed once at startup and injected; its lifetime is the
// lifetime of the serving process. The store never enforces expiry itself —
// callers must compare ExpiresAt against the current time.
type OTPStore struct {
	mu      sync.Mutex
	records map[string]OTPRecord
	locks   map[string]*emailLock
}

type emailLock struct {
	mu   sync.Mutex
	refs int
}

func NewOTPStore() *OTPStore {
	return &OTPStore{
		records: make(map[string]OTPRecord),
		locks:   make(map[string]*emailLock),
	}
}

// Put inserts or overwrites the record for email.
func (s *OTPStore) Put(email string, rec OTPRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[email] = rec
}

// Get returns the current record for email, if any. It does not mutate.
func (s *OTPStore) Get(email string) (OTPRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[email]
	return rec, ok
}

// Delete removes the record for email. No-op if absent.
func (s *OTPStore) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, email)
}

// LockEmail acquires a per-email mutex and returns its release func.
// Issuance holds this across the cooldown check, the outbound send and the
// store write, so two concurrent requests for the same email cannot both
// pass the cooldown check. Locks are reference-counted and removed once the
// last holder releases, so the lock map does not grow with traffic.
func (s *OTPStore) LockEmail(email string) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[email]
	if !ok {
		l = &emailLock{}
		s.locks[email] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, email)
		}
		s.mu.Unlock()
	}
}

// Len reports the number of pending records. Used by tests and debug logging.
func (s *OTPStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
