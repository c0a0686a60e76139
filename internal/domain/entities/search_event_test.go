package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebounceKey_UserWinsOverIP(t *testing.T) {
	// A logged-in actor is identified by user id; the address is irrelevant.
	withIP := DebounceKey("192.168.0.1", "42")
	withoutIP := DebounceKey("", "42")
	assert.Equal(t, withIP, withoutIP)
}

func TestDebounceKey_AnonymousKeyedByIP(t *testing.T) {
	a := DebounceKey("127.0.0.1", "")
	b := DebounceKey("127.0.0.2", "")
	assert.NotEqual(t, a, b)
}

func TestDebounceKey_UserAndIPNamespacesDisjoint(t *testing.T) {
	// "127.0.0.1" as a user id must never collide with the same string
	// as an IP address.
	assert.NotEqual(t, DebounceKey("127.0.0.1", ""), DebounceKey("", "127.0.0.1"))
}

func TestDebounceKey_DifferentUsersDistinct(t *testing.T) {
	a := DebounceKey("192.168.0.1", "1")
	b := DebounceKey("192.168.0.1", "2")
	assert.NotEqual(t, a, b)
}

func TestParseSearchType(t *testing.T) {
	tests := []struct {
		input   string
		want    SearchType
		wantErr bool
	}{
		{"header", SearchTypeHeader, false},
		{"full_page", SearchTypeFullPage, false},
		{"missing", 0, true},
		{"", 0, true},
		{"HEADER", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSearchType(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
		assert.True(t, got.Valid())
	}
}

func TestSearchTypeValid(t *testing.T) {
	assert.True(t, SearchTypeHeader.Valid())
	assert.True(t, SearchTypeFullPage.Valid())
	assert.False(t, SearchType(0).Valid())
	assert.False(t, SearchType(99).Valid())
}

func TestSearchResultTypeValid(t *testing.T) {
	assert.True(t, SearchResultTypeTopic.Valid())
	assert.True(t, SearchResultTypeTag.Valid())
	assert.False(t, SearchResultType(0).Valid())
	assert.False(t, SearchResultType(99).Valid())
}

func TestClickedThrough(t *testing.T) {
	event := &SearchEvent{Term: "jabba"}
	assert.False(t, event.ClickedThrough())

	event.SearchResultID = "24"
	assert.True(t, event.ClickedThrough())
}
