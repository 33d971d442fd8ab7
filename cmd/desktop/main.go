// Command desktop opens a window on the bouncer. By default the simulation
// runs in-process; with -server it becomes a viewer of a remote session.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/vladimirvolkov/bouncer/internal/config"
	"github.com/vladimirvolkov/bouncer/internal/game"
	"github.com/vladimirvolkov/bouncer/internal/room"
	"github.com/vladimirvolkov/bouncer/internal/surface"
	"github.com/vladimirvolkov/bouncer/internal/ws"
)

var (
	background = color.RGBA{0x20, 0x20, 0x30, 0xff}
	paddleCol  = color.White
	ballCol    = color.RGBA{0xff, 0xd7, 0x00, 0xff}
	initCol    = color.RGBA{0x80, 0x80, 0x80, 0xff}
	labelFace  = text.NewGoXFace(basicfont.Face7x13)
)

// Game implements ebiten.Game. Update is the refresh signal the frame
// scheduler yields to.
type Game struct {
	board  *surface.Board
	loop   *game.Loop
	remote *remote

	mu    sync.Mutex
	frame ws.FramePayload

	width, height int
}

func newLocal(cfg config.Config) (*Game, error) {
	g := &Game{board: surface.NewBoard(cfg.Viewport(), cfg.Dimensions())}
	state, err := game.NewState(cfg.GameConfig(), g.board, time.Now().UnixMilli(), cfg.Rand())
	if err != nil {
		return nil, err
	}
	g.board.Layout()
	g.loop = game.NewLoop(state, g.board, ebiten.TPS(), func(rep game.TickReport) {
		g.board.Layout()
		g.setFrame(room.FramePayload(g.board, rep))
	})
	return g, nil
}

func (g *Game) setFrame(f ws.FramePayload) {
	g.mu.Lock()
	g.frame = f
	g.mu.Unlock()
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) || ebiten.IsKeyPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	x, y := ebiten.CursorPosition()

	if g.remote != nil {
		return g.remote.update(game.Point{X: x, Y: y}, game.Size{Width: g.width, Height: g.height})
	}

	if g.width > 0 && g.height > 0 {
		g.board.Resize(game.Size{Width: g.width, Height: g.height})
	}
	g.loop.SetPointer(game.Point{X: x, Y: y})
	_, err := g.loop.Frame(time.Now())
	return err
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	g.mu.Lock()
	frame := g.frame
	g.mu.Unlock()

	balls := 0
	for _, s := range frame.Sprites {
		var c color.Color = paddleCol
		if s.Kind == string(surface.KindBall) {
			balls++
			c = ballCol
			if s.Init {
				c = initCol
			}
		}
		vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), c, false)
		if s.Label != "" {
			op := &text.DrawOptions{}
			op.GeoM.Translate(float64(s.X+s.W+2), float64(s.Y))
			text.Draw(screen, s.Label, labelFace, op)
		}
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(16, 16)
	text.Draw(screen, fmt.Sprintf("balls: %d  Esc: quit", balls), labelFace, op)
}

// Layout follows the window size, so the viewport tracks resizes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	serverURL := flag.String("server", "", "watch a remote session, e.g. ws://localhost:8080/ws")
	name := flag.String("name", "Desktop", "name announced to the server")
	flag.Parse()

	cfg, err := config.Load(*configPath, config.Default())
	if err != nil {
		log.Fatalf("%v", err)
	}

	var g *Game
	if *serverURL != "" {
		r, err := dial(*serverURL, *name)
		if err != nil {
			log.Fatalf("CONNECT FAILED: %s: %v", *serverURL, err)
		}
		defer r.close()
		g = &Game{remote: r}
		r.onFrame = g.setFrame
		go r.readLoop()
	} else {
		g, err = newLocal(cfg)
		if err != nil {
			log.Fatalf("SETUP FAILED: %v", err)
		}
	}

	ebiten.SetWindowSize(cfg.Board.Width, cfg.Board.Height)
	ebiten.SetWindowTitle("Bouncer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatalf("game stopped: %v", err)
	}
}
