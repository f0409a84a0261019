// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window owns the platform window the graphics runtime presents to.
// Windows are fixed size, resizing is not supported.
package window

import "unsafe"

// System is the windowing subsystem. Init must be called first and
// Terminate last, after every Window was destroyed.
type System interface {
	// Init initialises the windowing subsystem
	Init() error

	// CreateWindow opens a fixed size window
	CreateWindow(width, height uint32, title string) (Window, error)

	// InstanceProcAddr returns the runtime loader entry point known
	// to the windowing subsystem, nil when it has none.
	InstanceProcAddr() unsafe.Pointer

	// PollEvents processes pending events and returns immediately
	PollEvents()

	// Terminate shuts the windowing subsystem down
	Terminate()
}

// Window is a single platform window
type Window interface {
	// ShouldClose reports if the user asked to close the window
	ShouldClose() bool

	// RequiredInstanceExtensions lists instance extensions needed
	// to present to this window
	RequiredInstanceExtensions() []string

	// Destroy closes the window
	Destroy()
}
