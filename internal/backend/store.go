package backend

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/learningorchestra/orchestra/pkg/client"
)

type entry struct {
	id        string
	record    client.Record
	params    map[string]any
	remaining int
}

// store keeps every resource in memory, keyed by namespace then name. An
// entry stays unfinished until it has been read remaining times.
type store struct {
	mu      sync.Mutex
	entries map[string]map[string]*entry
}

func newStore() *store {
	return &store{
		entries: map[string]map[string]*entry{},
	}
}

func (s *store) create(namespace string, name string, kind string, url string, params map[string]any, polls int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[namespace]; !ok {
		s.entries[namespace] = map[string]*entry{}
	}
	if _, ok := s.entries[namespace][name]; ok {
		return false
	}
	if params == nil {
		params = map[string]any{}
	}

	s.entries[namespace][name] = &entry{
		id: uuid.NewString(),
		record: client.Record{
			DatasetName: name,
			Fields:      fields(params),
			Finished:    finished(polls),
			TimeCreated: time.Now().UTC().Format(time.RFC3339),
			Type:        kind,
			URL:         url,
		},
		params:    params,
		remaining: polls,
	}

	return true
}

func (s *store) update(namespace string, name string, params map[string]any, polls int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[namespace][name]
	if !ok {
		return false
	}

	for k, v := range params { // nosemgrep: range-over-map
		e.params[k] = v
	}
	e.remaining = polls
	e.record.Finished = finished(polls)

	return true
}

func (s *store) delete(namespace string, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[namespace][name]; !ok {
		return false
	}

	delete(s.entries[namespace], name)
	return true
}

func (s *store) list(namespace string) []client.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := []client.Record{}
	for _, e := range s.entries[namespace] { // nosemgrep: range-over-map
		records = append(records, e.record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].DatasetName < records[j].DatasetName
	})

	return records
}

// read returns the metadata record of name, counting the read as a status
// poll.
func (s *store) read(namespace string, name string) (*client.Record, map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[namespace][name]
	if !ok {
		return nil, nil, false
	}

	if e.remaining > 0 {
		e.remaining--
	}
	if e.remaining == 0 {
		e.record.Finished = client.FlagTrue
	}

	record := e.record
	params := map[string]any{"_id": e.id}
	for k, v := range e.params { // nosemgrep: range-over-map
		params[k] = v
	}

	return &record, params, true
}

func finished(polls int) client.Flag {
	if polls > 0 {
		return client.FlagFalse
	}
	return client.FlagTrue
}

// fields lists the attribute names a request mentions, when it names any.
func fields(params map[string]any) []string {
	names, ok := params["names"].([]any)
	if !ok {
		return []string{}
	}

	fields := make([]string, 0, len(names))
	for _, n := range names {
		if s, ok := n.(string); ok {
			fields = append(fields, s)
		}
	}

	return fields
}
