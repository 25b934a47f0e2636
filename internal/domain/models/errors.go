package models

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrNotInRoom           = errors.New("participant not in a room")
	ErrMessageNotFound     = errors.New("message not found")
	ErrEmptyMessage        = errors.New("empty message")
	ErrMessageTooLong      = errors.New("message too long")
	ErrChatDisabled        = errors.New("chat is disabled in this room")
	ErrScreenShareDisabled = errors.New("screen share is disabled in this room")
)
