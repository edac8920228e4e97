package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erain9/depthbook/pkg/book"
	"github.com/erain9/depthbook/pkg/logging"
)

var (
	// ErrBookExists is returned when trying to create a book that already exists
	ErrBookExists = errors.New("book with this name already exists")

	// ErrBookNotFound is returned when trying to access a non-existent book
	ErrBookNotFound = errors.New("book not found")
)

// BookInfo contains metadata about a book
type BookInfo struct {
	Name      string
	CreatedAt time.Time
}

// BookManager manages multiple books by name
type BookManager struct {
	mu    sync.RWMutex
	books map[string]*book.Book
	info  map[string]*BookInfo
}

// NewBookManager creates a new BookManager
func NewBookManager() *BookManager {
	return &BookManager{
		books: make(map[string]*book.Book),
		info:  make(map[string]*BookInfo),
	}
}

// CreateBook creates a new empty book
func (m *BookManager) CreateBook(ctx context.Context, name string) (*BookInfo, error) {
	logger := logging.FromContext(ctx).With().Str("book", name).Logger()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.books[name]; exists {
		logger.Error().Msg("Book already exists")
		return nil, ErrBookExists
	}

	m.books[name] = book.NewBook()

	info := &BookInfo{
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.info[name] = info

	logger.Info().Msg("Created new book")
	return info, nil
}

// GetBook retrieves a book by name
func (m *BookManager) GetBook(ctx context.Context, name string) (*book.Book, *BookInfo, error) {
	logger := logging.FromContext(ctx).With().Str("book", name).Logger()

	m.mu.RLock()
	defer m.mu.RUnlock()

	b, exists := m.books[name]
	if !exists {
		logger.Debug().Msg("Book not found")
		return nil, nil, ErrBookNotFound
	}

	return b, m.info[name], nil
}

// GetOrCreateBook retrieves a book by name, creating it when the feed
// mentions it for the first time.
func (m *BookManager) GetOrCreateBook(ctx context.Context, name string) *book.Book {
	m.mu.RLock()
	b, exists := m.books[name]
	m.mu.RUnlock()
	if exists {
		return b
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Someone may have created it between the two locks.
	if b, exists = m.books[name]; exists {
		return b
	}

	b = book.NewBook()
	m.books[name] = b
	m.info[name] = &BookInfo{
		Name:      name,
		CreatedAt: time.Now(),
	}

	logger := logging.FromContext(ctx)
	logger.Info().Str("book", name).Msg("Created new book")
	return b
}

// DeleteBook removes a book
func (m *BookManager) DeleteBook(ctx context.Context, name string) error {
	logger := logging.FromContext(ctx).With().Str("book", name).Logger()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.books[name]; !exists {
		logger.Debug().Msg("Book not found")
		return ErrBookNotFound
	}

	delete(m.books, name)
	delete(m.info, name)

	logger.Info().Msg("Deleted book")
	return nil
}

// ListBooks returns information about all books
func (m *BookManager) ListBooks(ctx context.Context) []*BookInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*BookInfo, 0, len(m.info))
	for _, info := range m.info {
		result = append(result, info)
	}

	logger := logging.FromContext(ctx)
	logger.Debug().Int("count", len(result)).Msg("Listed books")
	return result
}

// Close drops all books
func (m *BookManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.books = make(map[string]*book.Book)
	m.info = make(map[string]*BookInfo)
}
