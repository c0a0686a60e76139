package entities

import (
	"fmt"
	"time"
)

// SearchType identifies where a search was initiated from. It is a closed
// set; anything that does not parse is rejected before any store mutation.
type SearchType int

const (
	SearchTypeHeader SearchType = iota + 1
	SearchTypeFullPage
)

// Valid reports whether the search type is a recognized variant.
func (t SearchType) Valid() bool {
	return t == SearchTypeHeader || t == SearchTypeFullPage
}

func (t SearchType) String() string {
	switch t {
	case SearchTypeHeader:
		return "header"
	case SearchTypeFullPage:
		return "full_page"
	default:
		return fmt.Sprintf("search_type(%d)", int(t))
	}
}

// ParseSearchType maps the wire name of a search type to its variant.
func ParseSearchType(s string) (SearchType, error) {
	switch s {
	case "header":
		return SearchTypeHeader, nil
	case "full_page":
		return SearchTypeFullPage, nil
	default:
		return 0, fmt.Errorf("unrecognized search type %q", s)
	}
}

// SearchResultType identifies the kind of result an actor clicked through to.
type SearchResultType int

const (
	SearchResultTypeTopic SearchResultType = iota + 1
	SearchResultTypeUser
	SearchResultTypeCategory
	SearchResultTypeTag
)

// Valid reports whether the result type is a recognized variant.
func (t SearchResultType) Valid() bool {
	return t >= SearchResultTypeTopic && t <= SearchResultTypeTag
}

// Action is the outcome of a Log call.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionError   Action = "error"
)

// SearchEvent is one logged search, post-debounce. Repeated searches from the
// same actor inside the debounce window collapse into a single event whose
// mutable fields (term, search type, user agent) track the latest refinement.
type SearchEvent struct {
	ID               string           `json:"id" db:"id"`
	Term             string           `json:"term" db:"term"`
	SearchType       SearchType       `json:"search_type" db:"search_type"`
	IPAddress        string           `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent        string           `json:"user_agent,omitempty" db:"user_agent"`
	UserID           string           `json:"user_id,omitempty" db:"user_id"`
	SearchResultID   string           `json:"search_result_id,omitempty" db:"search_result_id"`
	SearchResultType SearchResultType `json:"search_result_type,omitempty" db:"search_result_type"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// ClickedThrough reports whether the actor selected a result for this search.
func (e *SearchEvent) ClickedThrough() bool {
	return e.SearchResultID != ""
}

// DebounceKey derives the cache key for an actor identity. A logged-in user
// is keyed by user id regardless of address; anonymous actors are keyed by
// IP. The prefixes keep the two namespaces apart even when values coincide.
func DebounceKey(ipAddress, userID string) string {
	if userID != "" {
		return "search-log:u:" + userID
	}
	return "search-log:ip:" + ipAddress
}

// DebounceKeyPattern matches every debounce cache entry. Used by the
// administrative cache reset, which must not touch any other key space.
const DebounceKeyPattern = "search-log:*"
