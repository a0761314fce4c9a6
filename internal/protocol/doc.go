// Package protocol implements the task server wire format.
//
// Every message in either direction is one frame: a 4-byte big-endian length
// followed by that many payload bytes. A request payload is UTF-8 text of the form
//
//	COMMAND:arg1:arg2
//
// split on ':' only as many times as the command has arguments, so the final
// argument (a password or task description) may itself contain ':'.
//
// Commands and their responses:
//
//	GET_TASKS:<username>              -> base64 task-list payload | NOT_FOUND | ERROR
//	ADD_TASK:<username>:<description> -> OK | NOT_FOUND | ERROR
//	REGISTER:<username>:<password>    -> SUCCESS | FAILURE
//	anything else                     -> Unknown command
//
// The task-list payload is a protobuf-wire message: field 1 (varint) carries the
// format version, field 2 (bytes, repeated) carries each description in order.
package protocol
