// Package action converts button tokens to typed actions and back.
//
// Tokens are colon-delimited ASCII:
//
//	menu:root
//	menu:cats
//	catnew
//	cat:<id>
//	cat:<id>:contacts|addcontact|delcontact|rmcat
//	delc:<id>:<display_name>
//	delcat:<id>:confirm
//
// The display name in delc is the remainder of the token and may itself
// contain colons.
package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the closed set of button actions
type Kind int

const (
	Invalid Kind = iota
	MenuRoot
	MenuCategories
	NewCategory
	OpenCategory
	ShowContacts
	AddContact
	PickContactToDelete
	AskRemoveCategory
	DeleteContact
	ConfirmRemoveCategory
)

var kindNames = map[Kind]string{
	Invalid:               "invalid",
	MenuRoot:              "menu_root",
	MenuCategories:        "menu_categories",
	NewCategory:           "new_category",
	OpenCategory:          "open_category",
	ShowContacts:          "show_contacts",
	AddContact:            "add_contact",
	PickContactToDelete:   "pick_contact_to_delete",
	AskRemoveCategory:     "ask_remove_category",
	DeleteContact:         "delete_contact",
	ConfirmRemoveCategory: "confirm_remove_category",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var (
	// ErrMalformed is returned for tokens with a bad shape or a non-numeric id
	ErrMalformed = errors.New("malformed action token")
	// ErrUnknownAction is returned for a well-formed category token with an unrecognized sub-action
	ErrUnknownAction = errors.New("unknown action")
)

const sep = ":"

var subActions = map[string]Kind{
	"contacts":   ShowContacts,
	"addcontact": AddContact,
	"delcontact": PickContactToDelete,
	"rmcat":      AskRemoveCategory,
}

// Action is a parsed button press
type Action struct {
	Kind        Kind
	CategoryID  int64
	DisplayName string
}

// TargetsCategory reports whether the action carries a category id
func (a Action) TargetsCategory() bool {
	switch a.Kind {
	case OpenCategory, ShowContacts, AddContact, PickContactToDelete,
		AskRemoveCategory, DeleteContact, ConfirmRemoveCategory:
		return true
	}
	return false
}

// Parse converts a raw token into an Action
func Parse(token string) (Action, error) {
	switch token {
	case "menu:root":
		return Action{Kind: MenuRoot}, nil
	case "menu:cats":
		return Action{Kind: MenuCategories}, nil
	case "catnew":
		return Action{Kind: NewCategory}, nil
	}

	head, rest, ok := strings.Cut(token, sep)
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrMalformed, token)
	}

	switch head {
	case "cat":
		return parseCategory(token, rest)
	case "delc":
		idPart, name, ok := strings.Cut(rest, sep)
		if !ok || name == "" {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, token)
		}
		id, err := parseID(token, idPart)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: DeleteContact, CategoryID: id, DisplayName: name}, nil
	case "delcat":
		parts := strings.Split(rest, sep)
		if len(parts) != 2 || parts[1] != "confirm" {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformed, token)
		}
		id, err := parseID(token, parts[0])
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ConfirmRemoveCategory, CategoryID: id}, nil
	}

	return Action{}, fmt.Errorf("%w: %q", ErrMalformed, token)
}

func parseCategory(token, rest string) (Action, error) {
	parts := strings.Split(rest, sep)
	id, err := parseID(token, parts[0])
	if err != nil {
		return Action{}, err
	}

	switch len(parts) {
	case 1:
		return Action{Kind: OpenCategory, CategoryID: id}, nil
	case 2:
		kind, ok := subActions[parts[1]]
		if !ok {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, parts[1])
		}
		return Action{Kind: kind, CategoryID: id}, nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrMalformed, token)
}

func parseID(token, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, token)
	}
	return id, nil
}

// Token formats the action back into its wire form
func (a Action) Token() string {
	id := strconv.FormatInt(a.CategoryID, 10)
	switch a.Kind {
	case MenuRoot:
		return "menu:root"
	case MenuCategories:
		return "menu:cats"
	case NewCategory:
		return "catnew"
	case OpenCategory:
		return "cat:" + id
	case ShowContacts:
		return "cat:" + id + ":contacts"
	case AddContact:
		return "cat:" + id + ":addcontact"
	case PickContactToDelete:
		return "cat:" + id + ":delcontact"
	case AskRemoveCategory:
		return "cat:" + id + ":rmcat"
	case DeleteContact:
		return "delc:" + id + ":" + a.DisplayName
	case ConfirmRemoveCategory:
		return "delcat:" + id + ":confirm"
	}
	return ""
}
