package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		token string
		want  Action
	}{
		{"menu:root", Action{Kind: MenuRoot}},
		{"menu:cats", Action{Kind: MenuCategories}},
		{"catnew", Action{Kind: NewCategory}},
		{"cat:5", Action{Kind: OpenCategory, CategoryID: 5}},
		{"cat:5:contacts", Action{Kind: ShowContacts, CategoryID: 5}},
		{"cat:5:addcontact", Action{Kind: AddContact, CategoryID: 5}},
		{"cat:5:delcontact", Action{Kind: PickContactToDelete, CategoryID: 5}},
		{"cat:12:rmcat", Action{Kind: AskRemoveCategory, CategoryID: 12}},
		{"delc:5:Jane", Action{Kind: DeleteContact, CategoryID: 5, DisplayName: "Jane"}},
		{"delc:5:Dr. Who: Time Lord", Action{Kind: DeleteContact, CategoryID: 5, DisplayName: "Dr. Who: Time Lord"}},
		{"delc:5:a:b:c", Action{Kind: DeleteContact, CategoryID: 5, DisplayName: "a:b:c"}},
		{"delcat:7:confirm", Action{Kind: ConfirmRemoveCategory, CategoryID: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.token, got.Token())
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tokens := []string{
		"",
		"cat",
		"cat:",
		"cat:abc",
		"cat:abc:contacts",
		"cat:5:contacts:extra",
		"delc:5",
		"delc:5:",
		"delc:x:Jane",
		"delcat:5",
		"delcat:5:yes",
		"delcat:abc:confirm",
		"menu:other",
		"unknown:1",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			_, err := Parse(token)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParse_UnknownSubAction(t *testing.T) {
	_, err := Parse("cat:5:rename")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestTargetsCategory(t *testing.T) {
	assert.False(t, Action{Kind: MenuRoot}.TargetsCategory())
	assert.False(t, Action{Kind: NewCategory}.TargetsCategory())
	assert.True(t, Action{Kind: DeleteContact, CategoryID: 1}.TargetsCategory())
	assert.True(t, Action{Kind: ConfirmRemoveCategory, CategoryID: 1}.TargetsCategory())
}
