package room

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrWrongPassword  = errors.New("wrong password")
	ErrAlreadyPlaying = errors.New("game already in progress")
	ErrRoomClosed     = errors.New("room closed")
	ErrNotOwner       = errors.New("only the room owner can do that")
	ErrNotMember      = errors.New("not a member of this room")
	ErrAtCapacity     = errors.New("server at maximum room capacity")
)
