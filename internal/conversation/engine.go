package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbaille/netbook/internal/menu"
)

// Book is the part of the contact book the flows write to
type Book interface {
	CreateCategory(ctx context.Context, ownerID int64, name string) (bool, error)
	AddContact(ctx context.Context, ownerID, categoryID int64, displayName, value string) (string, error)
}

const (
	promptCategoryName = "Enter a name for the new category (for example: Designers):\n\nOr /cancel to exit."
	blankCategoryName  = "An empty name won't do. Enter a proper one or /cancel."
	promptContactName  = "Adding a contact to '%s' 👇\nEnter the contact's name (for example: Jane Doe):\n\nOr /cancel to exit."
	blankContactName   = "The name can't be empty. Try again or /cancel."
	promptContactValue = "OK. Now enter the contact.\nIt can be an @handle or a phone number.\n\nOr /cancel to exit."
	blankContactValue  = "The contact can't be empty. Try again or /cancel."
	msgBrokenFlow      = "Something went wrong, please start again from the menu 😢"
)

// Engine drives the text-entry flows over a session Store
type Engine struct {
	sessions Store
	book     Book
}

// NewEngine creates an Engine
func NewEngine(sessions Store, book Book) *Engine {
	return &Engine{sessions: sessions, book: book}
}

// Session returns the user's current session
func (e *Engine) Session(ctx context.Context, userID int64) (Session, error) {
	return e.sessions.Get(ctx, userID)
}

// Cancel returns the user to idle and drops scratch data
func (e *Engine) Cancel(ctx context.Context, userID int64) error {
	return e.sessions.Clear(ctx, userID)
}

// StartCategory begins the create-category flow
func (e *Engine) StartCategory(ctx context.Context, userID int64) (menu.Reply, error) {
	if err := e.sessions.Put(ctx, userID, Session{State: AwaitingCategoryName}); err != nil {
		return menu.Reply{}, err
	}
	return menu.Reply{Text: promptCategoryName}, nil
}

// StartContact begins the add-contact flow for an already resolved category
func (e *Engine) StartContact(ctx context.Context, userID, categoryID int64, categoryName string) (menu.Reply, error) {
	s := Session{State: AwaitingContactName, CategoryID: &categoryID}
	if err := e.sessions.Put(ctx, userID, s); err != nil {
		return menu.Reply{}, err
	}
	return menu.Reply{Text: fmt.Sprintf(promptContactName, categoryName)}, nil
}

// HandleText feeds a text message to the user's flow.
// It reports false when the user is idle and the text was not consumed.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) (menu.Reply, bool, error) {
	s, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return menu.Reply{}, false, err
	}

	input := strings.TrimSpace(text)

	var reply menu.Reply
	switch s.State {
	case AwaitingCategoryName:
		reply, err = e.categoryName(ctx, userID, input)
	case AwaitingContactName:
		reply, err = e.contactName(ctx, userID, s, input)
	case AwaitingContactValue:
		reply, err = e.contactValue(ctx, userID, s, input)
	default:
		return menu.Reply{}, false, nil
	}
	return reply, true, err
}

func (e *Engine) categoryName(ctx context.Context, userID int64, name string) (menu.Reply, error) {
	if name == "" {
		return menu.Reply{Text: blankCategoryName}, nil
	}

	created, err := e.book.CreateCategory(ctx, userID, name)
	if err != nil {
		return menu.Reply{}, err
	}
	if err := e.sessions.Clear(ctx, userID); err != nil {
		return menu.Reply{}, err
	}

	text := fmt.Sprintf("Category '%s' created ✅", name)
	if !created {
		text = fmt.Sprintf("Category '%s' already exists ⚠️", name)
	}
	return menu.Reply{Text: text, Keyboard: menu.Main()}, nil
}

func (e *Engine) contactName(ctx context.Context, userID int64, s Session, name string) (menu.Reply, error) {
	if name == "" {
		return menu.Reply{Text: blankContactName}, nil
	}
	if s.CategoryID == nil {
		return e.abort(ctx, userID)
	}

	s.State = AwaitingContactValue
	s.DisplayName = &name
	if err := e.sessions.Put(ctx, userID, s); err != nil {
		return menu.Reply{}, err
	}
	return menu.Reply{Text: promptContactValue}, nil
}

func (e *Engine) contactValue(ctx context.Context, userID int64, s Session, value string) (menu.Reply, error) {
	if value == "" {
		return menu.Reply{Text: blankContactValue}, nil
	}
	if err := s.validateContact(); err != nil {
		return e.abort(ctx, userID)
	}

	text, err := e.book.AddContact(ctx, userID, *s.CategoryID, *s.DisplayName, value)
	if err != nil {
		return menu.Reply{}, err
	}
	if err := e.sessions.Clear(ctx, userID); err != nil {
		return menu.Reply{}, err
	}
	return menu.Reply{Text: text, Keyboard: menu.Main()}, nil
}

func (s Session) validateContact() error {
	if s.CategoryID == nil || s.DisplayName == nil {
		return ErrInconsistentSession
	}
	return nil
}

func (e *Engine) abort(ctx context.Context, userID int64) (menu.Reply, error) {
	if err := e.sessions.Clear(ctx, userID); err != nil {
		return menu.Reply{}, err
	}
	return menu.Reply{Text: msgBrokenFlow, Keyboard: menu.Main()}, nil
}
