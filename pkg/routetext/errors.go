package routetext

import "fmt"

// InvalidGuestFormatError reports a guest suffix that was not "+N".
type InvalidGuestFormatError struct {
	Input string
}

func (e *InvalidGuestFormatError) Error() string {
	return fmt.Sprintf("unrecognized guest format %q: want \"+N\"", e.Input)
}
