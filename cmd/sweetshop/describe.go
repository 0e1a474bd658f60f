package main

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-sweetshop"
)

// describe renders err for the terminal: the server message when there is
// one, otherwise the error message and its cause.
func describe(err error) string {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return err.Error()
	}

	msg := sweetshop.Message(err, "")
	if msg != "" {
		return msg
	}

	msg = richErr.Message
	if richErr.Source != nil {
		msg += ": " + describe(richErr.Source)
	}
	return msg
}
