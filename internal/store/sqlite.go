package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pbaille/netbook/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned by owner-scoped lookups when the row is absent
// or belongs to another user.
var ErrNotFound = errors.New("not found")

// Store handles database operations
type Store struct {
	db *sqlx.DB
}

// New opens the SQLite file at dbPath and initializes the schema.
// Foreign keys are enabled on every pooled connection so deletes cascade.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureUser inserts the user if absent
func (s *Store) EnsureUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (telegram_user_id) VALUES (?)",
		userID,
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// AddCategory creates a category and reports false when the owner
// already has one with that name.
func (s *Store) AddCategory(ctx context.Context, ownerID int64, name string) (bool, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (owner_user_id, name) VALUES (?, ?)",
		ownerID, name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert category: %w", err)
	}
	return true, nil
}

// ListCategories returns the owner's category names sorted by name
func (s *Store) ListCategories(ctx context.Context, ownerID int64) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		"SELECT name FROM categories WHERE owner_user_id = ? ORDER BY name ASC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return names, nil
}

// ListCategoriesFull returns the owner's categories sorted by name
func (s *Store) ListCategoriesFull(ctx context.Context, ownerID int64) ([]domain.Category, error) {
	var cats []domain.Category
	err := s.db.SelectContext(ctx, &cats,
		"SELECT id, owner_user_id, name FROM categories WHERE owner_user_id = ? ORDER BY name ASC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// GetCategoryID resolves a category name for the owner
func (s *Store) GetCategoryID(ctx context.Context, ownerID int64, name string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		"SELECT id FROM categories WHERE owner_user_id = ? AND name = ?",
		ownerID, name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get category id: %w", err)
	}
	return id, nil
}

// GetCategoryName resolves a category id for the owner
func (s *Store) GetCategoryName(ctx context.Context, ownerID, categoryID int64) (string, error) {
	var name string
	err := s.db.GetContext(ctx, &name,
		"SELECT name FROM categories WHERE owner_user_id = ? AND id = ?",
		ownerID, categoryID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get category name: %w", err)
	}
	return name, nil
}

// DeleteCategory removes the owner's category and, by cascade, its contacts.
// It reports whether a row was deleted.
func (s *Store) DeleteCategory(ctx context.Context, ownerID, categoryID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM categories WHERE owner_user_id = ? AND id = ?",
		ownerID, categoryID,
	)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return affected(res)
}

// AddContact inserts a contact; display names are not unique
func (s *Store) AddContact(ctx context.Context, categoryID int64, displayName, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO contacts (category_id, display_name, contact_value) VALUES (?, ?, ?)",
		categoryID, displayName, value,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// ListContacts returns the category's contacts sorted by display name
func (s *Store) ListContacts(ctx context.Context, categoryID int64) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := s.db.SelectContext(ctx, &contacts, `
		SELECT id, category_id, display_name, contact_value
		FROM contacts
		WHERE category_id = ?
		ORDER BY display_name ASC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// RemoveContact deletes every contact in the category with exactly this
// display name. It reports whether at least one row was removed.
func (s *Store) RemoveContact(ctx context.Context, categoryID int64, displayName string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM contacts WHERE category_id = ? AND display_name = ?",
		categoryID, displayName,
	)
	if err != nil {
		return false, fmt.Errorf("remove contact: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
