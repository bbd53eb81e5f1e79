// Package router turns inbound chat events into replies.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pbaille/netbook/internal/action"
	"github.com/pbaille/netbook/internal/contactbook"
	"github.com/pbaille/netbook/internal/conversation"
	"github.com/pbaille/netbook/internal/domain"
	"github.com/pbaille/netbook/internal/menu"
)

// Book is the contact book as seen by the router
type Book interface {
	SetupUser(ctx context.Context, userID int64) error
	CategoriesFull(ctx context.Context, ownerID int64) ([]domain.Category, error)
	ResolveCategoryName(ctx context.Context, ownerID, categoryID int64) (string, error)
	Contacts(ctx context.Context, ownerID, categoryID int64) ([]domain.Contact, error)
	ListContactsText(ctx context.Context, ownerID, categoryID int64) (string, error)
	RemoveContact(ctx context.Context, ownerID, categoryID int64, displayName string) (string, error)
	RemoveCategory(ctx context.Context, ownerID, categoryID int64) (string, error)
}

// EventKind distinguishes inbound events
type EventKind int

const (
	TextMessage EventKind = iota
	CommandMessage
	ButtonPress
)

func (k EventKind) String() string {
	switch k {
	case TextMessage:
		return "text"
	case CommandMessage:
		return "command"
	case ButtonPress:
		return "button"
	}
	return "unknown"
}

// Event is one inbound message or button press
type Event struct {
	ID     string
	UserID int64
	Kind   EventKind
	// Text is the message text, the command name without slash, or the button token.
	Text string
}

const (
	textGreeting = "Hi! This is your personal networking book 👋\n\n" +
		"I keep categories (for example \"Designers\", \"Investors\") " +
		"and the contacts inside each of them.\n\n" +
		"Press the button below to browse and manage your categories."
	textMainMenu     = "Main menu:"
	textCancelled    = "OK, cancelled."
	textNoCategories = "You have no categories yet.\nCreate the first one 👇"
	textCategories   = "Your categories:"
	textFailure      = "Something went wrong, try again via the menu."

	noticeInvalid       = "Invalid data"
	noticeUnknownAction = "Unknown action"
	noticeNotFound      = "Category not found"
)

// Router dispatches events to the contact book and the conversation flows
type Router struct {
	book  Book
	flows *conversation.Engine
	log   *slog.Logger
}

// New creates a Router
func New(book Book, flows *conversation.Engine, log *slog.Logger) *Router {
	return &Router{book: book, flows: flows, log: log}
}

// Handle processes one event. It never returns an error: failures are
// logged and rendered as an apology.
func (r *Router) Handle(ctx context.Context, ev Event) menu.Reply {
	log := r.log.With("event_id", ev.ID, "user_id", ev.UserID, "kind", ev.Kind.String())
	log.Debug("handle event", "text", ev.Text)

	var (
		reply menu.Reply
		err   error
	)
	switch ev.Kind {
	case CommandMessage:
		reply, err = r.command(ctx, ev.UserID, ev.Text)
	case ButtonPress:
		reply, err = r.button(ctx, log, ev.UserID, ev.Text)
	default:
		reply, err = r.text(ctx, ev.UserID, ev.Text)
	}
	if err != nil {
		log.Error("handle event failed", "err", err)
		if ev.Kind == ButtonPress {
			return menu.Notify(textFailure, true)
		}
		return menu.Reply{Text: textFailure, Keyboard: menu.Main()}
	}
	return reply
}

func (r *Router) command(ctx context.Context, userID int64, name string) (menu.Reply, error) {
	switch name {
	case "start":
		if err := r.book.SetupUser(ctx, userID); err != nil {
			return menu.Reply{}, err
		}
		return menu.Reply{Text: textGreeting, Keyboard: menu.Main()}, nil
	case "menu":
		if err := r.book.SetupUser(ctx, userID); err != nil {
			return menu.Reply{}, err
		}
		return menu.Reply{Text: textMainMenu, Keyboard: menu.Main()}, nil
	case "cancel":
		if err := r.flows.Cancel(ctx, userID); err != nil {
			return menu.Reply{}, err
		}
		return menu.Reply{Text: textCancelled, Keyboard: menu.Main()}, nil
	}
	return r.text(ctx, userID, "/"+name)
}

func (r *Router) text(ctx context.Context, userID int64, text string) (menu.Reply, error) {
	if err := r.book.SetupUser(ctx, userID); err != nil {
		return menu.Reply{}, err
	}
	reply, handled, err := r.flows.HandleText(ctx, userID, text)
	if err != nil {
		return menu.Reply{}, err
	}
	if !handled {
		return menu.Reply{Text: textMainMenu, Keyboard: menu.Main()}, nil
	}
	return reply, nil
}

func (r *Router) button(ctx context.Context, log *slog.Logger, userID int64, token string) (menu.Reply, error) {
	a, err := action.Parse(token)
	if err != nil {
		log.Warn("rejected action token", "token", token, "err", err)
		if errors.Is(err, action.ErrUnknownAction) {
			return menu.Notify(noticeUnknownAction, true), nil
		}
		return menu.Notify(noticeInvalid, true), nil
	}

	if err := r.book.SetupUser(ctx, userID); err != nil {
		return menu.Reply{}, err
	}

	var name string
	if a.TargetsCategory() {
		name, err = r.book.ResolveCategoryName(ctx, userID, a.CategoryID)
		if errors.Is(err, contactbook.ErrCategoryNotFound) {
			return menu.Notify(noticeNotFound, true), nil
		}
		if err != nil {
			return menu.Reply{}, err
		}
	}

	switch a.Kind {
	case action.NewCategory:
		return r.flows.StartCategory(ctx, userID)
	case action.AddContact:
		return r.flows.StartContact(ctx, userID, a.CategoryID, name)
	}

	// Every other action navigates away from any flow in progress.
	if err := r.flows.Cancel(ctx, userID); err != nil {
		return menu.Reply{}, err
	}

	switch a.Kind {
	case action.MenuRoot:
		return menu.Reply{Text: textMainMenu, Keyboard: menu.Main()}, nil
	case action.MenuCategories:
		return r.categories(ctx, userID, "")
	case action.OpenCategory:
		return categoryView(a.CategoryID, "Category: "+name), nil
	case action.ShowContacts:
		text, err := r.book.ListContactsText(ctx, userID, a.CategoryID)
		if err != nil {
			return menu.Reply{}, err
		}
		return categoryView(a.CategoryID, text), nil
	case action.PickContactToDelete:
		contacts, err := r.book.Contacts(ctx, userID, a.CategoryID)
		if err != nil {
			return menu.Reply{}, err
		}
		if len(contacts) == 0 {
			return categoryView(a.CategoryID, fmt.Sprintf("No contacts to delete in '%s' yet.", name)), nil
		}
		return menu.Reply{
			Text:     fmt.Sprintf("Who should be removed from '%s'?", name),
			Keyboard: menu.DeleteContact(a.CategoryID, contacts),
		}, nil
	case action.AskRemoveCategory:
		return menu.Reply{
			Text:     fmt.Sprintf("Delete the whole category '%s' with ALL its contacts?\nThis cannot be undone.", name),
			Keyboard: menu.ConfirmDeleteCategory(a.CategoryID, name),
		}, nil
	case action.DeleteContact:
		msg, err := r.book.RemoveContact(ctx, userID, a.CategoryID, a.DisplayName)
		if err != nil {
			return menu.Reply{}, err
		}
		return categoryView(a.CategoryID, fmt.Sprintf("%s\n\nCategory: %s", msg, name)), nil
	case action.ConfirmRemoveCategory:
		msg, err := r.book.RemoveCategory(ctx, userID, a.CategoryID)
		if err != nil {
			return menu.Reply{}, err
		}
		return r.categories(ctx, userID, msg)
	}

	return menu.Notify(noticeUnknownAction, true), nil
}

func categoryView(id int64, text string) menu.Reply {
	return menu.Reply{Text: text, Keyboard: menu.Category(id)}
}

// categories renders the category list, optionally prefixed by a result line
func (r *Router) categories(ctx context.Context, userID int64, prefix string) (menu.Reply, error) {
	cats, err := r.book.CategoriesFull(ctx, userID)
	if err != nil {
		return menu.Reply{}, err
	}

	text := textCategories
	if len(cats) == 0 {
		text = textNoCategories
	}
	if prefix != "" {
		text = prefix + "\n\n" + text
	}
	return menu.Reply{Text: text, Keyboard: menu.Categories(cats)}, nil
}
