/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"log"
	"time"
)

const logDate string = `2006-01-02T15:04:05.000-07:00`

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// errRoomUnavailable wraps the only fatal-to-session failure: a negative
// join response (room missing, expired, or full). The caller redirects
// out of the session; there is no retry. Rejected moves, chats, and game
// starts are recoverable and only surface a notice.
var errRoomUnavailable = errors.New("room unavailable")
