package protocol

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Request
		wantErr error
	}{
		{"get tasks", "GET_TASKS:User1", &Request{CmdGetTasks, []string{"User1"}}, nil},
		{"add task keeps delimiters in description", "ADD_TASK:alice:buy milk: 2L", &Request{CmdAddTask, []string{"alice", "buy milk: 2L"}}, nil},
		{"register keeps delimiters in password", "REGISTER:bob:p:a:ss", &Request{CmdRegister, []string{"bob", "p:a:ss"}}, nil},
		{"empty argument", "GET_TASKS:", &Request{CmdGetTasks, []string{""}}, nil},
		{"unknown command", "DELETE_TASK:alice:1", nil, ErrUnknownCommand},
		{"case sensitive", "get_tasks:alice", nil, ErrUnknownCommand},
		{"empty frame", "", nil, ErrUnknownCommand},
		{"missing args", "GET_TASKS", nil, ErrMalformed},
		{"missing description", "ADD_TASK:alice", nil, ErrMalformed},
		{"invalid utf-8 description", "ADD_TASK:User1:\xff\xfe", nil, ErrMalformed},
		{"invalid utf-8 command", "\xffGET_TASKS:User1", nil, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseRequest(%q) err = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequest(%q): %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseRequest(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestEncode(t *testing.T) {
	r := &Request{Command: CmdAddTask, Args: []string{"alice", "a:b"}}
	if got := string(r.Encode()); got != "ADD_TASK:alice:a:b" {
		t.Fatalf("Encode = %q", got)
	}
	back, err := ParseRequest(r.Encode())
	if err != nil || !reflect.DeepEqual(back, r) {
		t.Fatalf("parse encoded: %+v %v", back, err)
	}
}
