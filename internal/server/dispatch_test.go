package server

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"taskTracker/internal/auth"
	"taskTracker/internal/protocol"
	"taskTracker/internal/service"
	"taskTracker/repository"
)

// fakeOps records calls and returns canned errors.
type fakeOps struct {
	registerErr error
	taskErr     error
	tasks       []string

	gotUser string
	gotArgs []string
}

func (f *fakeOps) Register(_ context.Context, username, password string) error {
	f.gotUser = username
	f.gotArgs = []string{username, password}
	return f.registerErr
}

func (f *fakeOps) AddTask(ctx context.Context, description string) error {
	p, _ := auth.FromContext(ctx)
	if p != nil {
		f.gotUser = p.Name
	}
	f.gotArgs = []string{description}
	return f.taskErr
}

func (f *fakeOps) GetTasks(ctx context.Context) ([]string, error) {
	p, _ := auth.FromContext(ctx)
	if p != nil {
		f.gotUser = p.Name
	}
	return f.tasks, f.taskErr
}

func TestDispatch_Responses(t *testing.T) {
	storageFault := &repository.StorageError{Op: "insert task", Err: errors.New("disk I/O error")}

	tests := []struct {
		name     string
		ops      *fakeOps
		payload  string
		want     string
		wantUser string
		wantArgs []string
	}{
		{name: "add task", ops: &fakeOps{}, payload: "ADD_TASK:User1:buy milk", want: protocol.RespOK, wantUser: "User1", wantArgs: []string{"buy milk"}},
		{name: "add task keeps delimiters", ops: &fakeOps{}, payload: "ADD_TASK:User1:a:b:c", want: protocol.RespOK, wantUser: "User1", wantArgs: []string{"a:b:c"}},
		{name: "add task unknown user", ops: &fakeOps{taskErr: fmt.Errorf("lookup: %w", repository.ErrNotFound)}, payload: "ADD_TASK:ghost:x", want: protocol.RespNotFound},
		{name: "add task storage fault", ops: &fakeOps{taskErr: storageFault}, payload: "ADD_TASK:User1:x", want: protocol.RespError},
		{name: "register", ops: &fakeOps{}, payload: "REGISTER:alice:pw:with:colons", want: protocol.RespSuccess, wantUser: "alice", wantArgs: []string{"alice", "pw:with:colons"}},
		{name: "register taken", ops: &fakeOps{registerErr: repository.ErrConflict}, payload: "REGISTER:alice:pw", want: protocol.RespFailure},
		{name: "register invalid", ops: &fakeOps{registerErr: service.ErrInvalidUsername}, payload: "REGISTER::pw", want: protocol.RespFailure},
		{name: "register storage fault", ops: &fakeOps{registerErr: storageFault}, payload: "REGISTER:alice:pw", want: protocol.RespFailure},
		{name: "get tasks unknown user", ops: &fakeOps{taskErr: repository.ErrNotFound}, payload: "GET_TASKS:ghost", want: protocol.RespNotFound},
		{name: "get tasks storage fault", ops: &fakeOps{taskErr: storageFault}, payload: "GET_TASKS:User1", want: protocol.RespError},
		{name: "unknown command", ops: &fakeOps{}, payload: "DELETE_TASK:User1:1", want: protocol.RespUnknownCommand},
		{name: "lowercase command", ops: &fakeOps{}, payload: "get_tasks:User1", want: protocol.RespUnknownCommand},
		{name: "missing args", ops: &fakeOps{}, payload: "ADD_TASK:User1", want: protocol.RespUnknownCommand},
		{name: "empty payload", ops: &fakeOps{}, payload: "", want: protocol.RespUnknownCommand},
		{name: "invalid utf-8", ops: &fakeOps{}, payload: "ADD_TASK:User1:\xff\xfe", want: protocol.RespUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.ops, zaptest.NewLogger(t))
			got := d.Dispatch(context.Background(), []byte(tt.payload))
			assert.Equal(t, tt.want, got)
			if tt.wantUser != "" {
				assert.Equal(t, tt.wantUser, tt.ops.gotUser)
			}
			if tt.wantArgs != nil {
				assert.Equal(t, tt.wantArgs, tt.ops.gotArgs)
			}
		})
	}
}

func TestDispatch_GetTasksEncodesList(t *testing.T) {
	ops := &fakeOps{tasks: []string{"first", "second: with colon"}}
	d := NewDispatcher(ops, zaptest.NewLogger(t))

	resp := d.Dispatch(context.Background(), []byte("GET_TASKS:User2"))
	got, err := protocol.DecodeTaskList(resp)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second: with colon"}, got)
	assert.Equal(t, "User2", ops.gotUser)
}

func TestDispatch_GetTasksEmptyList(t *testing.T) {
	d := NewDispatcher(&fakeOps{tasks: []string{}}, nil)

	resp := d.Dispatch(context.Background(), []byte("GET_TASKS:BigBoss"))
	got, err := protocol.DecodeTaskList(resp)
	require.NoError(t, err)
	assert.Empty(t, got)
}
