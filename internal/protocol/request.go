package protocol

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Delimiter separates the command name and its arguments.
const Delimiter = ":"

// Command names are matched case-sensitively.
type Command string

const (
	CmdGetTasks Command = "GET_TASKS"
	CmdAddTask  Command = "ADD_TASK"
	CmdRegister Command = "REGISTER"
)

// Literal response bodies.
const (
	RespOK             = "OK"
	RespSuccess        = "SUCCESS"
	RespFailure        = "FAILURE"
	RespNotFound       = "NOT_FOUND"
	RespError          = "ERROR"
	RespUnknownCommand = "Unknown command"
)

var (
	// ErrUnknownCommand is returned for a command name outside the protocol.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMalformed is returned when a known command lacks required arguments.
	ErrMalformed = errors.New("malformed request")
)

var arity = map[Command]int{
	CmdGetTasks: 1,
	CmdAddTask:  2,
	CmdRegister: 2,
}

// Request is a parsed request frame.
type Request struct {
	Command Command
	Args    []string
}

// Arity returns the number of arguments cmd takes, or false for unknown commands.
func Arity(cmd Command) (int, bool) {
	n, ok := arity[cmd]
	return n, ok
}

// ParseRequest splits payload into a command and exactly the number of
// arguments that command takes. The last argument keeps any further delimiters.
// Payloads that are not valid UTF-8 are malformed.
func ParseRequest(payload []byte) (*Request, error) {
	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("%w: payload is not valid UTF-8", ErrMalformed)
	}
	text := string(payload)
	name, rest, hasArgs := strings.Cut(text, Delimiter)
	cmd := Command(name)
	n, ok := arity[cmd]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if !hasArgs {
		return nil, fmt.Errorf("%w: %s expects %d argument(s)", ErrMalformed, cmd, n)
	}
	args := strings.SplitN(rest, Delimiter, n)
	if len(args) != n {
		return nil, fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrMalformed, cmd, n, len(args))
	}
	return &Request{Command: cmd, Args: args}, nil
}

// Encode renders the request in wire form. The caller is responsible for
// keeping delimiters out of every argument but the last.
func (r *Request) Encode() []byte {
	parts := make([]string, 0, 1+len(r.Args))
	parts = append(parts, string(r.Command))
	parts = append(parts, r.Args...)
	return []byte(strings.Join(parts, Delimiter))
}
