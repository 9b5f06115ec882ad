// Package xdo delivers synthetic key events to an X11 session through the
// xdotool command.
package xdo
