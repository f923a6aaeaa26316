package chat

import "errors"

var (
	// ErrBusy is returned when a send targets a session that is still
	// waiting for its previous reply. The send is dropped.
	ErrBusy = errors.New("a reply is already pending for this session")
	// ErrEmptyMessage is returned for input that is blank after trimming.
	ErrEmptyMessage = errors.New("message is empty")
)
