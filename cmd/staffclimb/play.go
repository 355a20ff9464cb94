package main

import (
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ooftn/ecs"
	"github.com/spf13/cobra"

	"github.com/plus3/staffclimb/render"
	"github.com/plus3/staffclimb/runlog"
	"github.com/plus3/staffclimb/scene"
	"github.com/plus3/staffclimb/sound"
)

var flagDebug bool

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in a window",
	Long: `Open the game window. Attempts are recorded in the run history.

Examples:
  staffclimb play
  staffclimb play --preset easy --debug`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagDebug, "debug", false, "Show the ImGui debug overlay")
}

// Game implements ebiten.Game on top of a scene.
type Game struct {
	scene    *scene.Scene
	renderer *render.Renderer
	overlay  *render.Overlay
	sound    *sound.Player
	recorder *runlog.Recorder
	log      *log.Logger
}

func (g *Game) Update() error {
	if render.Quit() {
		return ebiten.Termination
	}

	var mouse, keyboard bool
	if g.overlay != nil {
		g.overlay.Update()
		mouse, keyboard = g.overlay.Captured()
	}

	g.scene.SetInput(render.PollKeys(mouse, keyboard).Input(g.renderer.Camera()))
	g.scene.Update(1.0 / float64(ebiten.TPS()))

	events := g.scene.Events()
	g.sound.HandleEvents(events)
	if g.recorder != nil {
		if err := g.recorder.Handle(events); err != nil {
			g.log.Warn("could not record run", "error", err)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.renderer.Layout(outsideWidth, outsideHeight)
	if g.overlay != nil {
		g.overlay.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	registry := ecs.NewComponentRegistry()
	render.RegisterComponents(registry)

	opts := append(sceneOptions(logger, flagSeed), scene.WithRegistry(registry))
	s, err := scene.New(cfg, opts...)
	if err != nil {
		return err
	}

	game := &Game{
		scene:    s,
		renderer: render.NewRenderer(s, cfg.Window.Width, cfg.Window.Height),
		log:      logger,
	}

	if flagDebug {
		game.overlay = render.NewOverlay(s, cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	} else {
		ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
		ebiten.SetWindowTitle(cfg.Window.Title)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game.sound, err = sound.NewPlayer(cfg.Audio, logger)
	if err != nil {
		logger.Warn("sound disabled", "error", err)
	}

	store, err := runlog.Open(cfg.Storage.DBPath)
	if err != nil {
		// Play on without a history.
		logger.Warn("could not open run history", "error", err)
	} else {
		defer store.Close()
		game.recorder = runlog.NewRecorder(store, cfg.Difficulty.Preset, cfg.Fingerprint(), logger)
	}

	logger.Info("starting", "preset", cfg.Difficulty.Preset, "platform_rate", cfg.Difficulty.PlatformRate)
	if err := ebiten.RunGame(game); err != nil {
		return err
	}

	state := s.State()
	if game.recorder != nil {
		if err := game.recorder.Finish(state.Attempt); err != nil {
			logger.Warn("could not record run", "error", err)
		}
	}
	logger.Info("bye", "wins", state.Wins, "restarts", state.Restarts)
	return nil
}
