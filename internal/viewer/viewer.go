// Package viewer plays rendered frames in an SDL2 window.
//
// Keys: space pauses, left/right step while paused, escape or q quits.
package viewer

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/afpkit/internal/playback"
)

func init() {
	// SDL video calls must be made from the main thread
	runtime.LockOSThread()
}

// ErrNoFrames is returned when there is no frame to put in the window.
var ErrNoFrames = errors.New("nothing to show")

// Config holds window configuration.
type Config struct {
	Title string
	Scale int
	Loop  bool
	VSync bool
}

// Window wraps an SDL2 window, its 2D renderer and one streaming texture.
type Window struct {
	log      *zap.Logger
	title    string
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	// SDL blends straight alpha; frames are premultiplied.
	staging *image.NRGBA
	vsync   bool
}

// Open creates a window sized for w x h frames at the configured scale.
func Open(cfg Config, w, h int, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}
	scale := max(cfg.Scale, 1)
	win := &Window{
		log:     log,
		title:   cfg.Title,
		staging: image.NewNRGBA(image.Rect(0, 0, w, h)),
		vsync:   cfg.VSync,
	}

	log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	var err error
	win.window, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(w*scale),
		int32(h*scale),
		uint32(sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE),
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	flags := uint32(sdl.RENDERER_ACCELERATED)
	if cfg.VSync {
		flags |= sdl.RENDERER_PRESENTVSYNC
	}
	win.renderer, err = sdl.CreateRenderer(win.window, -1, flags)
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("SDL_CreateRenderer failed: %w", err)
	}
	// Logical size keeps pixels square when the window is resized.
	if err := win.renderer.SetLogicalSize(int32(w), int32(h)); err != nil {
		log.Warn("failed to set logical size", zap.Error(err))
	}

	// ABGR8888 is R,G,B,A in memory on little-endian hosts, matching image.NRGBA.
	win.texture, err = win.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888), sdl.TEXTUREACCESS_STREAMING, int32(w), int32(h))
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("SDL_CreateTexture failed: %w", err)
	}
	if err := win.texture.SetBlendMode(sdl.BLENDMODE_BLEND); err != nil {
		log.Warn("failed to enable texture blending", zap.Error(err))
	}

	log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", w*scale),
		zap.Int("height", h*scale),
		zap.Bool("vsync", cfg.VSync))
	return win, nil
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.texture != nil {
		w.texture.Destroy()
	}
	if w.renderer != nil {
		w.renderer.Destroy()
	}
	if w.window != nil {
		w.window.Destroy()
	}
	sdl.Quit()
}

// upload copies a frame into the streaming texture.
func (w *Window) upload(frame *image.RGBA) error {
	draw.Draw(w.staging, w.staging.Rect, frame, frame.Bounds().Min, draw.Src)

	pixels, pitch, err := w.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("locking texture: %w", err)
	}
	rowBytes := w.staging.Rect.Dx() * 4
	for y := 0; y < w.staging.Rect.Dy(); y++ {
		src := w.staging.Pix[y*w.staging.Stride : y*w.staging.Stride+rowBytes]
		copy(pixels[y*pitch:y*pitch+rowBytes], src)
	}
	w.texture.Unlock()
	return nil
}

func (w *Window) present() error {
	// Dark gray so transparent regions are visible.
	if err := w.renderer.SetDrawColor(40, 40, 40, 255); err != nil {
		return err
	}
	if err := w.renderer.Clear(); err != nil {
		return err
	}
	if err := w.renderer.Copy(w.texture, nil, nil); err != nil {
		return err
	}
	w.renderer.Present()
	return nil
}

// Play shows frames until the window is closed, escape is pressed, or a
// non-looping animation ends.
func (w *Window) Play(frames []*image.RGBA, durationMS int, loop bool) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}

	player := playback.New(len(frames), durationMS, loop)
	shown := -1
	last := time.Now()

	for !player.Done() {
		if quit := w.handleEvents(player); quit {
			return nil
		}

		now := time.Now()
		player.Update(now.Sub(last))
		last = now

		if idx := player.Frame(); idx != shown {
			if err := w.upload(frames[idx]); err != nil {
				return err
			}
			shown = idx
			w.setTitle(player, len(frames))
		}
		if err := w.present(); err != nil {
			return fmt.Errorf("presenting frame %d: %w", shown, err)
		}

		if !w.vsync {
			sdl.Delay(uint32(max(1, player.Interval().Milliseconds()/4)))
		}
	}

	w.log.Debug("playback finished", zap.Int("frames", len(frames)))
	return nil
}

func (w *Window) setTitle(player *playback.Player, total int) {
	state := ""
	if player.Paused() {
		state = " [paused]"
	}
	w.window.SetTitle(fmt.Sprintf("%s (%d/%d)%s", w.title, player.Frame()+1, total, state))
}

// handleEvents drains the SDL event queue and reports whether to quit.
func (w *Window) handleEvents(player *playback.Player) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true
		case *sdl.KeyboardEvent:
			if e.State != sdl.PRESSED {
				continue
			}
			switch e.Keysym.Sym {
			case sdl.K_ESCAPE, sdl.K_q:
				return true
			case sdl.K_SPACE:
				if e.Repeat == 0 {
					player.TogglePause()
					w.setTitle(player, player.Frames())
				}
			case sdl.K_LEFT:
				player.Step(-1)
			case sdl.K_RIGHT:
				player.Step(1)
			}
		}
	}
	return false
}

// Show opens a window, plays frames and closes it.
func Show(cfg Config, frames []*image.RGBA, durationMS int, log *zap.Logger) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	b := frames[0].Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: frames are %dx%d", ErrNoFrames, b.Dx(), b.Dy())
	}

	win, err := Open(cfg, b.Dx(), b.Dy(), log)
	if err != nil {
		return err
	}
	defer win.Close()

	return win.Play(frames, durationMS, cfg.Loop)
}
