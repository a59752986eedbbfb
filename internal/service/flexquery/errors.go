package flexquery

import (
	"fmt"
	"strings"
)

// UnknownPartyError is returned when a query names a party code that no
// configured party group knows about.
type UnknownPartyError struct {
	PartyCode string
}

func (e *UnknownPartyError) Error() string {
	return fmt.Sprintf("unknown party `%s`, try Reader.Parties() for a list of valid codes", e.PartyCode)
}

// NoDataError is returned when a query's filter combination matched zero
// rows. It is deliberately distinct from UnknownPartyError: the party was
// valid, the filters just selected nothing.
type NoDataError struct {
	PartyCodes []string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data matched the query for parties [%s]", strings.Join(e.PartyCodes, ", "))
}
