// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

// NewSDL creates an SDL2 backed windowing subsystem. All methods
// must be called from the main thread.
func NewSDL(logger log.FieldLogger) *SDL {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &SDL{
		logger:  logger,
		windows: make(map[uint32]*sdlWindow),
	}
}

var _ System = (*SDL)(nil)

// SDL implements System using SDL2
type SDL struct {
	logger  log.FieldLogger
	windows map[uint32]*sdlWindow
}

// Init implements interface
func (s *SDL) Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl.Init()")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}
	return nil
}

// CreateWindow implements interface
func (s *SDL) CreateWindow(width, height uint32, title string) (Window, error) {
	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}

	id, err := window.GetID()
	if err != nil {
		window.Destroy()
		return nil, errors.Wrap(err, "sdl.Window.GetID()")
	}

	w := &sdlWindow{
		system: s,
		id:     id,
		window: window,
	}
	s.windows[id] = w
	s.logger.WithFields(log.Fields{
		"title":  title,
		"width":  width,
		"height": height,
	}).Debug("window created")
	return w, nil
}

// InstanceProcAddr implements interface
func (s *SDL) InstanceProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// PollEvents implements interface
func (s *SDL) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.KeyboardEvent:
			if et.Keysym.Sym == sdl.K_ESCAPE {
				s.requestClose(et.WindowID)
			}
		case *sdl.WindowEvent:
			if et.Event == sdl.WINDOWEVENT_CLOSE {
				s.requestClose(et.WindowID)
			}
		case *sdl.QuitEvent:
			for _, w := range s.windows {
				w.closing = true
			}
		}
	}
}

func (s *SDL) requestClose(id uint32) {
	if w, ok := s.windows[id]; ok {
		w.closing = true
	}
}

// Terminate implements interface
func (s *SDL) Terminate() {
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}

type sdlWindow struct {
	system  *SDL
	id      uint32
	window  *sdl.Window
	closing bool
}

func (w *sdlWindow) ShouldClose() bool {
	return w.closing
}

func (w *sdlWindow) RequiredInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *sdlWindow) Destroy() {
	delete(w.system.windows, w.id)
	if err := w.window.Destroy(); err != nil {
		w.system.logger.WithError(err).Warn("sdl.Window.Destroy()")
	}
}
