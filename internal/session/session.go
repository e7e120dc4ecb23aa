// Package session tracks each user's position in the linear order intake flow
// and accumulates the draft order. State lives for the process lifetime only.
package session

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// State identifies a step of the intake flow.
type State string

const (
	// StateStart means no intake is in progress; any input shows the menu.
	StateStart State = "start"
	// StateAwaitingAddress means a flavor was picked and the next text
	// message is the delivery address.
	StateAwaitingAddress State = "awaiting_address"
	// StateAwaitingPhone means the address was recorded and the next text
	// message is the phone number.
	StateAwaitingPhone State = "awaiting_phone"
)

var (
	// ErrUnknownFlavor is returned when a selection token does not resolve
	// in the catalog. Keyboards only advertise catalog tokens, so this is
	// unreachable through normal operation.
	ErrUnknownFlavor = errors.New("session: unknown flavor")
	// ErrUnexpectedInput is returned when an event arrives in the wrong
	// state. Callers recover by restarting the flow at the menu.
	ErrUnexpectedInput = errors.New("session: unexpected input for state")
	// ErrInvalidPhone is returned when the phone number fails the format
	// contract. The session state is left unchanged.
	ErrInvalidPhone = errors.New("session: invalid phone format")
)

const (
	phonePrefix = "+7"
	phoneLength = 12
)

// Draft is the in-progress order being collected from a user. A field may
// only be read after the transition that writes it has happened.
type Draft struct {
	ProductName string
	PriceKZT    int
	PriceUSDT   int
	Address     string
	Phone       string
}

// Session is one user's conversation state.
type Session struct {
	UserID   int64
	State    State
	Draft    Draft
	LastSeen time.Time
}

// ValidPhone checks the phone format contract: the literal +7 prefix and a
// total length of exactly 12 characters. Length counts characters, not bytes,
// and digit-ness of the tail is not checked, mirroring the accepted input
// contract.
func ValidPhone(text string) bool {
	return strings.HasPrefix(text, phonePrefix) && utf8.RuneCountInString(text) == phoneLength
}
