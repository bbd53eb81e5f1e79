// Package contactbook maps persistence results to owner-scoped outcomes
// and the text shown to the user.
package contactbook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pbaille/netbook/internal/domain"
	"github.com/pbaille/netbook/internal/store"
)

// Repository is the persistence contract the service needs
type Repository interface {
	EnsureUser(ctx context.Context, userID int64) error
	AddCategory(ctx context.Context, ownerID int64, name string) (bool, error)
	ListCategories(ctx context.Context, ownerID int64) ([]string, error)
	ListCategoriesFull(ctx context.Context, ownerID int64) ([]domain.Category, error)
	GetCategoryID(ctx context.Context, ownerID int64, name string) (int64, error)
	GetCategoryName(ctx context.Context, ownerID, categoryID int64) (string, error)
	DeleteCategory(ctx context.Context, ownerID, categoryID int64) (bool, error)
	AddContact(ctx context.Context, categoryID int64, displayName, value string) error
	ListContacts(ctx context.Context, categoryID int64) ([]domain.Contact, error)
	RemoveContact(ctx context.Context, categoryID int64, displayName string) (bool, error)
}

// ErrCategoryNotFound is returned when a category id does not resolve for the owner
var ErrCategoryNotFound = errors.New("category not found")

const msgCategoryNotFound = "Category not found."

// Service wraps a Repository with ownership checks
type Service struct {
	repo Repository
}

// New creates a Service
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetupUser registers the user on first interaction
func (s *Service) SetupUser(ctx context.Context, userID int64) error {
	return s.repo.EnsureUser(ctx, userID)
}

// CreateCategory reports false when the owner already has a category with this name
func (s *Service) CreateCategory(ctx context.Context, ownerID int64, name string) (bool, error) {
	return s.repo.AddCategory(ctx, ownerID, name)
}

// Categories returns the owner's category names in name order
func (s *Service) Categories(ctx context.Context, ownerID int64) ([]string, error) {
	return s.repo.ListCategories(ctx, ownerID)
}

// CategoriesFull returns the owner's categories in name order
func (s *Service) CategoriesFull(ctx context.Context, ownerID int64) ([]domain.Category, error) {
	return s.repo.ListCategoriesFull(ctx, ownerID)
}

// ResolveCategoryID looks a category up by name.
// It returns ErrCategoryNotFound when the owner has no such category.
func (s *Service) ResolveCategoryID(ctx context.Context, ownerID int64, name string) (int64, error) {
	id, err := s.repo.GetCategoryID(ctx, ownerID, name)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrCategoryNotFound
	}
	return id, err
}

// ResolveCategoryName looks a category up by id.
// It returns ErrCategoryNotFound when the id is absent or owned by someone else.
func (s *Service) ResolveCategoryName(ctx context.Context, ownerID, categoryID int64) (string, error) {
	name, err := s.repo.GetCategoryName(ctx, ownerID, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrCategoryNotFound
	}
	return name, err
}

// RemoveCategory deletes the category with all its contacts
func (s *Service) RemoveCategory(ctx context.Context, ownerID, categoryID int64) (string, error) {
	name, err := s.ResolveCategoryName(ctx, ownerID, categoryID)
	if errors.Is(err, ErrCategoryNotFound) {
		return msgCategoryNotFound, nil
	}
	if err != nil {
		return "", err
	}

	deleted, err := s.repo.DeleteCategory(ctx, ownerID, categoryID)
	if err != nil {
		return "", err
	}
	if !deleted {
		return "Could not delete the category (it may already be gone).", nil
	}
	return fmt.Sprintf("Category '%s' deleted together with all its contacts 🗑️", name), nil
}

// AddContact stores a contact in one of the owner's categories
func (s *Service) AddContact(ctx context.Context, ownerID, categoryID int64, displayName, value string) (string, error) {
	name, err := s.ResolveCategoryName(ctx, ownerID, categoryID)
	if errors.Is(err, ErrCategoryNotFound) {
		return msgCategoryNotFound, nil
	}
	if err != nil {
		return "", err
	}

	if err := s.repo.AddContact(ctx, categoryID, displayName, value); err != nil {
		return "", err
	}
	return fmt.Sprintf("Contact '%s' added to '%s' ✅", displayName, name), nil
}

// Contacts returns the contacts of one of the owner's categories
func (s *Service) Contacts(ctx context.Context, ownerID, categoryID int64) ([]domain.Contact, error) {
	if _, err := s.ResolveCategoryName(ctx, ownerID, categoryID); err != nil {
		return nil, err
	}
	return s.repo.ListContacts(ctx, categoryID)
}

// ListContactsText renders the category's contacts one per line
func (s *Service) ListContactsText(ctx context.Context, ownerID, categoryID int64) (string, error) {
	name, err := s.ResolveCategoryName(ctx, ownerID, categoryID)
	if errors.Is(err, ErrCategoryNotFound) {
		return msgCategoryNotFound, nil
	}
	if err != nil {
		return "", err
	}

	contacts, err := s.repo.ListContacts(ctx, categoryID)
	if err != nil {
		return "", err
	}
	if len(contacts) == 0 {
		return fmt.Sprintf("No contacts in '%s' yet.", name), nil
	}

	lines := make([]string, 0, len(contacts)+1)
	lines = append(lines, fmt.Sprintf("Contacts in '%s':", name))
	for _, c := range contacts {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.DisplayName, c.ContactValue))
	}
	return strings.Join(lines, "\n"), nil
}

// RemoveContact deletes every contact in the category named displayName
func (s *Service) RemoveContact(ctx context.Context, ownerID, categoryID int64, displayName string) (string, error) {
	name, err := s.ResolveCategoryName(ctx, ownerID, categoryID)
	if errors.Is(err, ErrCategoryNotFound) {
		return msgCategoryNotFound, nil
	}
	if err != nil {
		return "", err
	}

	removed, err := s.repo.RemoveContact(ctx, categoryID, displayName)
	if err != nil {
		return "", err
	}
	if !removed {
		return fmt.Sprintf("Contact '%s' not found in '%s'.", displayName, name), nil
	}
	return fmt.Sprintf("Contact '%s' removed from '%s' 🗑️", displayName, name), nil
}
