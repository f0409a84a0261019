// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package windowtest provides a scripted window.System for tests.
package windowtest

import (
	"unsafe"

	"github.com/devblok/koruboot/window"
)

// System is a fake windowing subsystem. Its window asks to close
// after CloseAfter polls; zero means never.
type System struct {
	Extensions []string
	CloseAfter int

	InitErr   error
	CreateErr error
	ProcAddr  unsafe.Pointer

	Window *Window

	polls int
	calls []string
}

var _ window.System = (*System)(nil)

// Calls returns the recorded calls, window calls included
func (s *System) Calls() []string {
	return append([]string(nil), s.calls...)
}

// Polls returns how many times PollEvents ran
func (s *System) Polls() int {
	return s.polls
}

// Init implements interface
func (s *System) Init() error {
	s.calls = append(s.calls, "Init")
	return s.InitErr
}

// CreateWindow implements interface
func (s *System) CreateWindow(width, height uint32, title string) (window.Window, error) {
	s.calls = append(s.calls, "CreateWindow")
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.Window = &Window{
		system: s,
		Width:  width,
		Height: height,
		Title:  title,
	}
	return s.Window, nil
}

// InstanceProcAddr implements interface
func (s *System) InstanceProcAddr() unsafe.Pointer {
	return s.ProcAddr
}

// PollEvents implements interface
func (s *System) PollEvents() {
	s.polls++
}

// Terminate implements interface
func (s *System) Terminate() {
	s.calls = append(s.calls, "Terminate")
}

// Window is the fake window created by System
type Window struct {
	system *System

	Width     uint32
	Height    uint32
	Title     string
	Destroyed bool
}

// ShouldClose implements interface
func (w *Window) ShouldClose() bool {
	return w.system.CloseAfter > 0 && w.system.polls >= w.system.CloseAfter
}

// RequiredInstanceExtensions implements interface
func (w *Window) RequiredInstanceExtensions() []string {
	return w.system.Extensions
}

// Destroy implements interface
func (w *Window) Destroy() {
	w.system.calls = append(w.system.calls, "DestroyWindow")
	w.Destroyed = true
}
