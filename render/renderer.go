package render

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/ooftn/ecs"
	"github.com/plus3/ooftn/ecs/debugui"
	debugui_ebiten "github.com/plus3/ooftn/ecs/debugui/ebiten"

	"github.com/plus3/staffclimb/scene"
)

var (
	skyColor     = color.RGBA{188, 214, 236, 255}
	groundColor  = color.RGBA{96, 84, 70, 255}
	wallColor    = color.RGBA{70, 70, 80, 255}
	staffColor   = color.RGBA{214, 170, 40, 255}
	orbColor     = color.RGBA{255, 236, 150, 255}
	playerColor  = color.RGBA{200, 70, 60, 255}
	rangeColor   = color.RGBA{255, 255, 255, 90}
	textColor    = color.RGBA{20, 20, 30, 255}
	groundedTint = color.RGBA{230, 110, 90, 255}
)

// Screen is the image the draw systems paint on during a frame.
type Screen struct {
	Image *ebiten.Image
}

// View holds the camera used by the draw systems and input projection.
type View struct {
	Camera Camera
}

// RegisterComponents adds the renderer's singletons and overlay components
// to registry. Call it before the scene creates its storage.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Screen](registry)
	ecs.RegisterComponent[View](registry)
	ecs.RegisterComponent[debugui.ImguiItem](registry)
	ecs.RegisterComponent[debugui.ImguiInputState](registry)
	ecs.RegisterComponent[debugui_ebiten.ImguiBackend](registry)
	ecs.RegisterComponent[Inspection](registry)
	debugui.RegisterDebugUIComponents(registry)
}

// Renderer draws the scene through its own scheduler, which shares the
// scene storage but runs only when ebiten asks for a frame.
type Renderer struct {
	scheduler *ecs.Scheduler
	screen    *ecs.Singleton[Screen]
	view      *ecs.Singleton[View]
}

// NewRenderer prepares a renderer for s on a width x height window.
func NewRenderer(s *scene.Scene, width, height int) *Renderer {
	cfg := s.Config()
	storage := s.Storage()

	r := &Renderer{
		screen: ecs.NewSingleton[Screen](storage),
		view: ecs.NewSingleton[View](storage, View{
			Camera: NewCamera(width, height, cfg.ArenaWidth(), cfg.Window.ViewHeight),
		}),
	}

	r.scheduler = ecs.NewScheduler(storage)
	r.scheduler.Register(&BackdropSystem{arenaWidth: cfg.ArenaWidth()})
	r.scheduler.Register(&EntitySystem{})
	r.scheduler.Register(&OverlaySystem{})
	return r
}

// Draw paints one frame onto screen.
func (r *Renderer) Draw(screen *ebiten.Image) {
	r.screen.Get().Image = screen
	r.scheduler.Once(0)
}

// Layout keeps the camera in step with the window size.
func (r *Renderer) Layout(width, height int) {
	cam := &r.view.Get().Camera
	if cam.Width != width || cam.Height != height {
		cam.Resize(width, height)
	}
}

// Camera returns the current camera.
func (r *Renderer) Camera() Camera {
	return r.view.Get().Camera
}

// BackdropSystem clears the frame and draws the ground and the walls.
type BackdropSystem struct {
	Screen  ecs.Singleton[Screen]
	View    ecs.Singleton[View]
	Grounds ecs.Query[struct {
		*scene.Ground
		*scene.Transform
	}]

	arenaWidth float64
}

func (s *BackdropSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get().Image
	cam := s.View.Get().Camera
	screen.Fill(skyColor)

	for ground := range s.Grounds.Iter() {
		surface := cam.ToScreen(ground.Transform.Position)
		vector.DrawFilledRect(screen, 0, float32(surface[1]), float32(cam.Width), float32(float64(cam.Height)-surface[1]), groundColor, false)
	}

	for _, x := range []float64{0, s.arenaWidth} {
		bottom := cam.ToScreen(mgl64.Vec2{x, 0})
		vector.StrokeLine(screen, float32(bottom[0]), float32(bottom[1]), float32(bottom[0]), 0, 3, wallColor, false)
	}
}

// EntitySystem draws the platforms, the trophy and the player.
type EntitySystem struct {
	Screen    ecs.Singleton[Screen]
	View      ecs.Singleton[View]
	State     ecs.Singleton[scene.State]
	Platforms ecs.Query[struct {
		*scene.Platform
		*scene.Transform
		*scene.Shape
		*scene.Material
	}]
	Trophies ecs.Query[struct {
		*scene.Trophy
		*scene.Transform
		*scene.Shape
	}]
	Players ecs.Query[struct {
		*scene.Player
		*scene.Transform
		*scene.Shape
	}]
}

func (s *EntitySystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get().Image
	cam := s.View.Get().Camera
	state := s.State.Get()

	for platform := range s.Platforms.Iter() {
		size := scaled(platform.Shape, platform.Transform)
		x, y, w, h := cam.Rect(platform.Transform.Position, size)
		vector.DrawFilledRect(screen, x, y, w, h, shade(platform.Material), false)
		vector.StrokeLine(screen, x, y, x+w, y, 2, highlight(platform.Material), false)
		vector.StrokeRect(screen, x, y, w, h, 1, color.RGBA{0, 0, 0, 60}, false)
	}

	for trophy := range s.Trophies.Iter() {
		size := scaled(trophy.Shape, trophy.Transform)
		x, y, w, h := cam.Rect(trophy.Transform.Position, size)
		if state.InRange {
			centre := cam.ToScreen(trophy.Transform.Position)
			vector.DrawFilledCircle(screen, float32(centre[0]), float32(centre[1]), h, rangeColor, true)
		}
		vector.DrawFilledRect(screen, x, y, w, h, staffColor, false)
		vector.DrawFilledCircle(screen, x+w/2, y, w*1.5, orbColor, true)
	}

	for player := range s.Players.Iter() {
		size := scaled(player.Shape, player.Transform)
		x, y, w, h := cam.Rect(player.Transform.Position, size)
		c := playerColor
		if player.Player.Grounded {
			c = groundedTint
		}
		vector.DrawFilledRect(screen, x, y+w, w, h-w, c, false)
		vector.DrawFilledCircle(screen, x+w/2, y+w/2, w/2, c, true)
	}
}

// OverlaySystem draws the status text, the hover prompt and the attempt
// counters.
type OverlaySystem struct {
	Screen   ecs.Singleton[Screen]
	View     ecs.Singleton[View]
	State    ecs.Singleton[scene.State]
	Text     ecs.Singleton[scene.Text]
	Trophies ecs.Query[struct {
		*scene.Trophy
		*scene.Transform
		*scene.Shape
	}]

	status label
	hover  label
}

func (s *OverlaySystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get().Image
	cam := s.View.Get().Camera
	state := s.State.Get()
	text := s.Text.Get()

	if text.Value != "" {
		x, y := anchor(cam, text.HAlign, text.VAlign)
		s.status.draw(screen, text.Value, text.FontSize, x, y, text.HAlign, text.VAlign)
	}

	if state.Hovering {
		for trophy := range s.Trophies.Iter() {
			size := scaled(trophy.Shape, trophy.Transform)
			top := cam.ToScreen(trophy.Transform.Position.Add(mgl64.Vec2{0, size[1]/2 + 0.5}))
			s.hover.draw(screen, trophy.Trophy.HoverText, 20, top[0], top[1], "center", "bottom")
		}
	}

	hud := fmt.Sprintf("tick %d  platforms %d  jumps %d  restarts %d  wins %d",
		state.Attempt.Ticks, state.Attempt.Platforms, state.Attempt.Jumps, state.Restarts, state.Wins)
	ebitenutil.DebugPrintAt(screen, hud, 8, cam.Height-20)
}

func scaled(shape *scene.Shape, t *scene.Transform) mgl64.Vec2 {
	return mgl64.Vec2{shape.Size[0] * t.Scale[0], shape.Size[1] * t.Scale[1]}
}

// shade darkens rough surfaces.
func shade(m *scene.Material) color.RGBA {
	k := 1 - 0.25*m.Roughness
	return color.RGBA{
		R: uint8(float64(m.Albedo.R) * k),
		G: uint8(float64(m.Albedo.G) * k),
		B: uint8(float64(m.Albedo.B) * k),
		A: m.Albedo.A,
	}
}

// highlight is the lit top edge; metallic surfaces reflect more white.
func highlight(m *scene.Material) color.RGBA {
	mix := func(c uint8) uint8 {
		return uint8(float64(c) + (255-float64(c))*(0.2+0.6*m.Metallic))
	}
	return color.RGBA{mix(m.Albedo.R), mix(m.Albedo.G), mix(m.Albedo.B), 255}
}

// anchor returns the screen point a text block with the given alignment
// is attached to.
func anchor(cam Camera, hAlign, vAlign string) (x, y float64) {
	const pad = 12
	switch hAlign {
	case "left":
		x = pad
	case "right":
		x = float64(cam.Width) - pad
	default:
		x = float64(cam.Width) / 2
	}
	switch vAlign {
	case "bottom":
		y = float64(cam.Height) - pad
	case "middle", "center":
		y = float64(cam.Height) / 2
	default:
		y = pad
	}
	return x, y
}

// Glyph cell of the ebitenutil debug font.
const (
	glyphWidth  = 6
	glyphHeight = 16
)

// label renders a line of debug-font text once and scales it to a font size.
type label struct {
	text  string
	image *ebiten.Image
}

func (l *label) draw(dst *ebiten.Image, text string, fontSize, x, y float64, hAlign, vAlign string) {
	if l.image == nil || l.text != text {
		if l.image != nil {
			l.image.Deallocate()
		}
		l.text = text
		l.image = ebiten.NewImage(max(1, len(text)*glyphWidth), glyphHeight)
		ebitenutil.DebugPrint(l.image, text)
	}

	k := fontSize / glyphHeight
	w := float64(l.image.Bounds().Dx()) * k
	h := float64(l.image.Bounds().Dy()) * k
	switch hAlign {
	case "left":
	case "right":
		x -= w
	default:
		x -= w / 2
	}
	switch vAlign {
	case "bottom":
		y -= h
	case "middle", "center":
		y -= h / 2
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(k, k)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	dst.DrawImage(l.image, op)
}
