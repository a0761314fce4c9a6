package protocol

import (
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// TaskListVersion is the current task-list payload format.
const TaskListVersion = 1

const (
	fieldVersion protowire.Number = 1
	fieldTask    protowire.Number = 2
)

// ErrBadPayload is returned when a task-list payload cannot be decoded.
var ErrBadPayload = errors.New("invalid task list payload")

// EncodeTaskList serializes descriptions in order and base64-encodes the result.
func EncodeTaskList(tasks []string) string {
	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, TaskListVersion)
	for _, t := range tasks {
		b = protowire.AppendTag(b, fieldTask, protowire.BytesType)
		b = protowire.AppendString(b, t)
	}
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeTaskList reverses EncodeTaskList. Unknown fields are skipped so newer
// servers may add fields without breaking older clients.
func DecodeTaskList(encoded string) ([]string, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrBadPayload, err)
	}
	tasks := []string{}
	version := uint64(0)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrBadPayload, protowire.ParseError(n))
			}
			version = v
			b = b[n:]
		case num == fieldTask && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrBadPayload, protowire.ParseError(n))
			}
			if !utf8.ValidString(s) {
				return nil, fmt.Errorf("%w: task is not valid UTF-8", ErrBadPayload)
			}
			tasks = append(tasks, s)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrBadPayload, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if version != TaskListVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadPayload, version)
	}
	return tasks, nil
}
