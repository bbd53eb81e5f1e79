// Package menu describes outbound replies and builds the bot's keyboards.
package menu

import (
	"fmt"

	"github.com/pbaille/netbook/internal/action"
	"github.com/pbaille/netbook/internal/domain"
)

// Button is one inline button
type Button struct {
	Text   string
	Action string
}

// Keyboard is a list of button rows
type Keyboard [][]Button

// Reply is what the transport renders for one inbound event.
// An empty Text with a Notice leaves the current view unchanged.
type Reply struct {
	Text     string
	Keyboard Keyboard
	// Notice is a short acknowledgement for a button press.
	Notice string
	// Alert shows Notice as a modal instead of a toast.
	Alert bool
}

// HasView reports whether the reply replaces the visible message
func (r Reply) HasView() bool {
	return r.Text != ""
}

// Notify builds a reply that only shows a notice
func Notify(text string, alert bool) Reply {
	return Reply{Notice: text, Alert: alert}
}

func button(text string, a action.Action) Button {
	return Button{Text: text, Action: a.Token()}
}

func row(buttons ...Button) []Button {
	return buttons
}

// Main is the root menu
func Main() Keyboard {
	return Keyboard{
		row(button("📂 Categories", action.Action{Kind: action.MenuCategories})),
	}
}

// Categories lists the owner's categories with create and back buttons
func Categories(cats []domain.Category) Keyboard {
	kb := make(Keyboard, 0, len(cats)+2)
	for _, c := range cats {
		kb = append(kb, row(button("📁 "+c.Name, action.Action{Kind: action.OpenCategory, CategoryID: c.ID})))
	}
	kb = append(kb,
		row(button("➕ New category", action.Action{Kind: action.NewCategory})),
		row(button("⬅ Back", action.Action{Kind: action.MenuRoot})),
	)
	return kb
}

// Category is the per-category action menu
func Category(id int64) Keyboard {
	return Keyboard{
		row(button("👁 Show contacts", action.Action{Kind: action.ShowContacts, CategoryID: id})),
		row(button("➕ Add contact", action.Action{Kind: action.AddContact, CategoryID: id})),
		row(button("🗑 Delete contact", action.Action{Kind: action.PickContactToDelete, CategoryID: id})),
		row(button("🔥 Delete category", action.Action{Kind: action.AskRemoveCategory, CategoryID: id})),
		row(button("⬅ Back to categories", action.Action{Kind: action.MenuCategories})),
	}
}

// DeleteContact offers one button per contact of the category
func DeleteContact(id int64, contacts []domain.Contact) Keyboard {
	kb := make(Keyboard, 0, len(contacts)+1)
	for _, c := range contacts {
		kb = append(kb, row(button("❌ "+c.DisplayName, action.Action{
			Kind:        action.DeleteContact,
			CategoryID:  id,
			DisplayName: c.DisplayName,
		})))
	}
	kb = append(kb, row(button("⬅ Back", action.Action{Kind: action.OpenCategory, CategoryID: id})))
	return kb
}

// ConfirmDeleteCategory asks before deleting a category with its contacts
func ConfirmDeleteCategory(id int64, name string) Keyboard {
	return Keyboard{
		row(button(fmt.Sprintf("❗ Delete '%s'", name), action.Action{Kind: action.ConfirmRemoveCategory, CategoryID: id})),
		row(button("⬅ Back", action.Action{Kind: action.OpenCategory, CategoryID: id})),
	}
}
