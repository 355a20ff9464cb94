package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/plus3/staffclimb/scene"
)

// Keys is a snapshot of the devices the game listens to.
type Keys struct {
	Left, Right bool
	// Jump, Interact, Restart and Click are true only on the frame the key
	// or button went down.
	Jump     bool
	Interact bool
	Restart  bool
	Click    bool
	Cursor   mgl64.Vec2
	// CursorFree is false while an overlay owns the mouse.
	CursorFree bool
}

// PollKeys reads the keyboard and mouse.
func PollKeys(mouseCaptured, keyboardCaptured bool) Keys {
	var k Keys
	if !keyboardCaptured {
		k.Left = ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
		k.Right = ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight)
		k.Jump = inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
			inpututil.IsKeyJustPressed(ebiten.KeyW) ||
			inpututil.IsKeyJustPressed(ebiten.KeyArrowUp)
		k.Interact = inpututil.IsKeyJustPressed(ebiten.KeyE)
		k.Restart = inpututil.IsKeyJustPressed(ebiten.KeyR)
	}

	mx, my := ebiten.CursorPosition()
	k.Cursor = mgl64.Vec2{float64(mx), float64(my)}
	k.CursorFree = !mouseCaptured
	if k.CursorFree {
		k.Click = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	}
	return k
}

// Input converts the snapshot to scene input, projecting the cursor into
// the world through cam.
func (k Keys) Input(cam Camera) scene.Input {
	in := scene.Input{
		Jump:     k.Jump,
		Interact: k.Interact,
		Restart:  k.Restart,
	}
	if k.Left {
		in.MoveX--
	}
	if k.Right {
		in.MoveX++
	}

	inside := k.Cursor[0] >= 0 && k.Cursor[1] >= 0 &&
		k.Cursor[0] < float64(cam.Width) && k.Cursor[1] < float64(cam.Height)
	if k.CursorFree && inside {
		in.Pointer = cam.ToWorld(k.Cursor)
		in.PointerActive = true
		in.PointerPressed = k.Click
	}
	return in
}

// Quit reports whether the player asked to close the window.
func Quit() bool {
	return ebiten.IsKeyPressed(ebiten.KeyEscape) || ebiten.IsKeyPressed(ebiten.KeyQ)
}
