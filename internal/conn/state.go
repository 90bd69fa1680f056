package conn

import (
	"context"

	"github.com/looplab/fsm"
)

// Kind is the coarse connection state shown in the status line.
type Kind int

const (
	Disconnected Kind = iota
	Connecting
	Connected
	Error
)

func (k Kind) String() string {
	switch k {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Kinds lists every Kind, in declaration order.
var Kinds = []Kind{Disconnected, Connecting, Connected, Error}

func kindOf(state string) Kind {
	for _, k := range Kinds {
		if k.String() == state {
			return k
		}
	}
	return Disconnected
}

// State is the connection state. Message is only set when Kind is Error.
type State struct {
	Kind    Kind
	Message string
}

func (s State) String() string {
	if s.Kind == Error && s.Message != "" {
		return "error: " + s.Message
	}
	return s.Kind.String()
}

const (
	eventOpen   = "open"
	eventOpened = "opened"
	eventFail   = "fail"
	eventClose  = "close"
)

// newMachine builds the connection lifecycle:
//
//	disconnected|error --open--> connecting --opened--> connected
//	connecting|connected --fail--> error
//	connecting|connected|error --close--> disconnected
//
// onEnter receives every state entered along with the event arguments.
func newMachine(onEnter func(dst string, args []interface{})) *fsm.FSM {
	events := fsm.Events{
		{Name: eventOpen, Src: []string{Disconnected.String(), Error.String()}, Dst: Connecting.String()},
		{Name: eventOpened, Src: []string{Connecting.String()}, Dst: Connected.String()},
		{Name: eventFail, Src: []string{Connecting.String(), Connected.String()}, Dst: Error.String()},
		{Name: eventClose, Src: []string{Connecting.String(), Connected.String(), Error.String()}, Dst: Disconnected.String()},
	}

	callbacks := fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			onEnter(e.Dst, e.Args)
		},
	}

	return fsm.NewFSM(Disconnected.String(), events, callbacks)
}
