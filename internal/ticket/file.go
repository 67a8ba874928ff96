package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/aretw0/flume/pkg/domain"
)

// FileStore persists tickets as a single JSON array on disk. Every
// operation reads and rewrites the whole file, which is fine for the
// volumes a support desk produces and keeps the file editable by hand.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens a store backed by the JSON file at path. The file
// is created on first save; a missing file reads as an empty store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the ticket, replacing any existing ticket with the same id.
func (s *FileStore) Save(_ context.Context, t *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range tickets {
		if tickets[i].TicketID == t.TicketID {
			tickets[i] = *t
			replaced = true
			break
		}
	}
	if !replaced {
		tickets = append(tickets, *t)
	}
	return s.write(tickets)
}

// Get returns the ticket with the given id, or domain.ErrTicketNotFound.
func (s *FileStore) Get(_ context.Context, id string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		if tickets[i].TicketID == id {
			t := tickets[i]
			return &t, nil
		}
	}
	return nil, domain.ErrTicketNotFound
}

// List returns all tickets in insertion order.
func (s *FileStore) List(_ context.Context) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// NextID returns the id one past the highest numbered ticket on file,
// formatted as TKT-001, TKT-002 and so on.
func (s *FileStore) NextID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return "", err
	}
	max := 0
	for i := range tickets {
		var n int
		if _, err := fmt.Sscanf(tickets[i].TicketID, "TKT-%d", &n); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("TKT-%03d", max+1), nil
}

func (s *FileStore) load() ([]domain.Ticket, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return tickets, nil
}

func (s *FileStore) write(tickets []domain.Ticket) error {
	data, err := json.MarshalIndent(tickets, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
