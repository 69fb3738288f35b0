// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diana

// Session batches insertions issued between StartUpdateSession and
// EndUpdateSession into a single linearizable bulk update per keyword
// (§4.8). Sessions are not nestable: opening one while another is already
// open on the same client is an invalid-state error.
type Session struct {
	client *Client
	order  []string
	byKey  map[string][]uint64
}

// StartUpdateSession opens a batching session on c. It fails with
// ErrInvalidState if a session is already open.
func (c *Client) StartUpdateSession() (*Session, error) {
	if c.session != nil {
		return nil, ErrInvalidState
	}
	s := &Session{
		client: c,
		byKey:  make(map[string][]uint64),
	}
	c.session = s
	return s, nil
}

// Insert stages a (keyword, documentIndex) pair into the session.
func (s *Session) Insert(keyword []byte, documentIndex uint64) error {
	if s.client.session != s {
		return ErrInvalidState
	}
	key := string(keyword)
	if _, ok := s.byKey[key]; !ok {
		s.order = append(s.order, key)
	}
	s.byKey[key] = append(s.byKey[key], documentIndex)
	return nil
}

// SessionUpdate is one keyword's worth of UpdateRequests produced when a
// session ends.
type SessionUpdate struct {
	Keyword  []byte
	Requests []*UpdateRequest
}

// EndUpdateSession closes the session, deriving one bulk_insertion_request
// per distinct keyword touched during the session, in the order each
// keyword first appeared. After this call the client accepts a new
// session.
func (s *Session) EndUpdateSession() ([]SessionUpdate, error) {
	if s.client.session != s {
		return nil, ErrInvalidState
	}
	defer func() { s.client.session = nil }()

	updates := make([]SessionUpdate, 0, len(s.order))
	for _, key := range s.order {
		docs := s.byKey[key]
		kw := []byte(key)
		reqs, err := s.client.BulkInsertionRequest(kw, docs)
		if err != nil {
			return nil, err
		}
		updates = append(updates, SessionUpdate{Keyword: kw, Requests: reqs})
	}
	return updates, nil
}
