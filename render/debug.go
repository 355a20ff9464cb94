package render

import (
	"fmt"

	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ooftn/ecs"
	"github.com/plus3/ooftn/ecs/debugui"
	debugui_ebiten "github.com/plus3/ooftn/ecs/debugui/ebiten"

	"github.com/plus3/staffclimb/scene"
)

// Inspection selects the entity shown by the component inspector.
type Inspection struct {
	Entity ecs.EntityId
}

// ToolsSystem draws the storage viewers spawned by debugui.SpawnDebugUI.
type ToolsSystem struct {
	Browsers   ecs.Query[struct{ *debugui.EntityBrowserComponent }]
	Inspectors ecs.Query[struct{ *debugui.ComponentInspectorComponent }]
	Archetypes ecs.Query[struct{ *debugui.ArchetypeViewerComponent }]
	Stats      ecs.Query[struct{ *debugui.PerformanceStatsComponent }]
	Queries    ecs.Query[struct{ *debugui.QueryDebuggerComponent }]
	Timer      ecs.Singleton[debugui.FrameTimer]
	Inspection ecs.Singleton[Inspection]
}

func (s *ToolsSystem) Execute(frame *ecs.UpdateFrame) {
	storage := frame.Storage
	dt := s.Timer.Get().GetDeltaTime()

	for v := range s.Browsers.Iter() {
		v.EntityBrowserComponent.Render(storage)
	}
	for v := range s.Inspectors.Iter() {
		v.ComponentInspectorComponent.Render(storage, s.Inspection.Get().Entity)
	}
	for v := range s.Archetypes.Iter() {
		v.ArchetypeViewerComponent.Render(storage)
	}
	for v := range s.Stats.Iter() {
		v.PerformanceStatsComponent.Render(storage, dt)
	}
	for v := range s.Queries.Iter() {
		v.QueryDebuggerComponent.Render(storage)
	}
}

// Overlay is a Dear ImGui debug overlay over the scene storage.
type Overlay struct {
	backend   *ecs.Singleton[debugui_ebiten.ImguiBackend]
	input     *ecs.Singleton[debugui.ImguiInputState]
	scheduler *ecs.Scheduler
}

// NewOverlay creates the ImGui backend, which also opens the window, and
// spawns the staffclimb panels next to the generic storage viewers.
// RegisterComponents must have been called on the scene's registry.
func NewOverlay(s *scene.Scene, title string, width, height int) *Overlay {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")

	storage := s.Storage()
	ecs.NewSingleton[debugui_ebiten.ImguiBackend](storage, debugui_ebiten.ImguiBackend{
		EbitenBackend: backend,
	})

	o := &Overlay{
		backend: ecs.NewSingleton[debugui_ebiten.ImguiBackend](storage),
		input:   ecs.NewSingleton[debugui.ImguiInputState](storage),
	}
	spawnPanels(s)

	o.scheduler = ecs.NewScheduler(storage)
	o.scheduler.Register(&debugui.ImguiSystem{})
	o.scheduler.Register(&ToolsSystem{})
	return o
}

// spawnPanels adds every overlay window to the scene storage.
func spawnPanels(s *scene.Scene) {
	storage := s.Storage()
	ecs.NewSingleton[debugui.FrameTimer](storage, *debugui.NewFrameTimer())
	ecs.NewSingleton[Inspection](storage, Inspection{Entity: s.PlayerEntity()})

	spawnScenePanel(s)
	spawnSystemsPanel(s)
	debugui.SpawnDebugUI(storage)
}

// Update runs the panels. Call it once per ebiten update.
func (o *Overlay) Update() {
	backend := o.backend.Get()
	backend.BeginFrame()
	o.scheduler.Once(0)
	backend.EndFrame()
}

// Draw paints the overlay on top of screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	o.backend.Get().Draw(screen)
}

// Layout forwards the window size to the backend.
func (o *Overlay) Layout(width, height int) {
	o.backend.Get().Layout(width, height)
}

// Captured reports whether the overlay owns the mouse and the keyboard.
func (o *Overlay) Captured() (mouse, keyboard bool) {
	state := o.input.Get()
	return state.WantCaptureMouse, state.WantCaptureKeyboard
}

func spawnScenePanel(s *scene.Scene) {
	cfg := s.Config()
	inspection := ecs.NewSingleton[Inspection](s.Storage())
	s.Storage().Spawn(debugui.ImguiItem{
		Render: func() {
			imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
			imgui.SetNextWindowSizeV(imgui.NewVec2(260, 290), imgui.CondOnce)

			if imgui.BeginV("Scene", nil, 0) {
				state := s.State()
				world := s.World()
				player := s.PlayerPosition()

				imgui.Text(fmt.Sprintf("Phase: %s", state.Phase))
				imgui.Text(fmt.Sprintf("Tick: %d", state.Tick))
				imgui.Text(fmt.Sprintf("Restarts: %d  Wins: %d", state.Restarts, state.Wins))
				imgui.Separator()
				imgui.Text(fmt.Sprintf("Attempt ticks: %d", state.Attempt.Ticks))
				imgui.Text(fmt.Sprintf("Attempt platforms: %d", state.Attempt.Platforms))
				imgui.Text(fmt.Sprintf("Attempt jumps: %d", state.Attempt.Jumps))
				imgui.Separator()
				imgui.Text(fmt.Sprintf("Bodies: %d", world.Len()))
				imgui.Text(fmt.Sprintf("Substeps: %d", world.Substeps()))
				imgui.Text(fmt.Sprintf("Player: (%.2f, %.2f)", player[0], player[1]))
				imgui.Text(fmt.Sprintf("In range: %t", state.InRange))
				imgui.Separator()

				for col := range cfg.Grid.Columns {
					if col > 0 {
						imgui.SameLine()
					}
					if imgui.Button(fmt.Sprintf("Drop %d", col)) {
						x := float64(col)*cfg.Grid.Cell + cfg.Grid.Cell/2
						s.SpawnPlatform(x, cfg.SpawnHeight())
					}
				}
				if imgui.Button("Restart") {
					s.Restart()
				}
				if imgui.Button("Inspect player") {
					inspection.Get().Entity = s.PlayerEntity()
				}
				imgui.SameLine()
				if imgui.Button("Inspect trophy") {
					inspection.Get().Entity = s.TrophyEntity()
				}
			}
			imgui.End()
		},
	})
}

func spawnSystemsPanel(s *scene.Scene) {
	s.Storage().Spawn(debugui.ImguiItem{
		Render: func() {
			imgui.SetNextWindowPosV(imgui.NewVec2(10, 310), imgui.CondOnce, imgui.NewVec2(0, 0))
			imgui.SetNextWindowSizeV(imgui.NewVec2(360, 200), imgui.CondOnce)

			if imgui.BeginV("Systems", nil, 0) {
				stats := s.Scheduler().GetStats()
				const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
				if imgui.BeginTableV("SystemStats", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
					imgui.TableSetupColumn("System")
					imgui.TableSetupColumn("Avg")
					imgui.TableSetupColumn("Max")
					imgui.TableHeadersRow()

					for _, sys := range stats.Systems {
						imgui.TableNextRow()
						imgui.TableNextColumn()
						imgui.Text(sys.Name)
						imgui.TableNextColumn()
						imgui.Text(sys.AvgDuration.String())
						imgui.TableNextColumn()
						imgui.Text(sys.MaxDuration.String())
					}
					imgui.EndTable()
				}
			}
			imgui.End()
		},
	})
}
