// Command terminal runs the bouncer in a terminal: cells are pixels, the
// mouse drives the paddles.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/vladimirvolkov/bouncer/internal/audio"
	"github.com/vladimirvolkov/bouncer/internal/config"
	"github.com/vladimirvolkov/bouncer/internal/game"
	"github.com/vladimirvolkov/bouncer/internal/surface"
)

const (
	logDir      = "logs"
	logFileName = "bouncer-terminal.log"
)

var (
	configPath = flag.String("config", "", "path to a TOML config file")
	soundFlag  = flag.Bool("sound", false, "play a blip on every bounce")
	debugFlag  = flag.Bool("debug", false, "write logs to "+filepath.Join(logDir, logFileName))
)

var errQuit = errors.New("quit")

var (
	paddleStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	ballStyle     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	initBallStyle = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	statusStyle   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// setupLogging keeps log output off the screen: a file with -debug,
// io.Discard otherwise.
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	f, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	return f
}

type Game struct {
	screen  tcell.Screen
	board   *surface.Board
	loop    *game.Loop
	blipper *audio.Blipper
	balls   int
	rate    int
}

func NewGame(cfg config.Config, sound bool) (*Game, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()

	w, h := screen.Size()
	g := &Game{
		screen:  screen,
		board:   surface.NewBoard(game.Size{Width: w, Height: h}, cfg.Dimensions()),
		blipper: &audio.Blipper{},
		rate:    cfg.Server.TickRate,
	}

	state, err := game.NewState(cfg.GameConfig(), g.board, time.Now().UnixMilli(), cfg.Rand())
	if err != nil {
		screen.Fini()
		return nil, err
	}
	g.board.Layout()
	g.loop = game.NewLoop(state, g.board, cfg.Server.TickRate, g.frame)
	g.loop.LogBounces = true

	if sound {
		if err := g.blipper.Init(); err != nil {
			// Non-fatal, the field runs silent
			log.Printf("Audio initialization failed: %v", err)
		}
	}
	return g, nil
}

func (g *Game) frame(rep game.TickReport) {
	g.board.Layout()
	g.balls = rep.Balls
	g.blipper.Play(rep.Bounces)
	g.draw()
}

func (g *Game) draw() {
	g.screen.Clear()
	for _, s := range g.board.Sprites() {
		r, style := '█', paddleStyle
		if s.Kind == surface.KindBall {
			r, style = '●', ballStyle
			if s.Initializing {
				style = initBallStyle
			}
		}
		for y := s.Y; y < s.S(); y++ {
			for x := s.X; x < s.E(); x++ {
				g.screen.SetContent(x, y, r, nil, style)
			}
		}
	}
	status := fmt.Sprintf(" balls: %d  q: quit ", g.balls)
	for i, r := range status {
		g.screen.SetContent(2+i, 1, r, nil, statusStyle)
	}
	g.screen.Show()
}

func (g *Game) handleInput(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return errQuit
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		g.loop.SetPointer(game.Point{X: x, Y: y})
	case *tcell.EventResize:
		w, h := g.screen.Size()
		g.board.Resize(game.Size{Width: w, Height: h})
		g.screen.Sync()
	}
	return nil
}

func (g *Game) run() error {
	ticker := time.NewTicker(time.Second / time.Duration(g.rate))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	if _, err := g.loop.Frame(time.Now()); err != nil {
		return err
	}
	for {
		select {
		case ev := <-eventChan:
			if err := g.handleInput(ev); err != nil {
				return err
			}
		case now := <-ticker.C:
			if _, err := g.loop.Frame(now); err != nil {
				return err
			}
		}
	}
}

func (g *Game) cleanup() {
	g.blipper.Close()
	g.screen.Fini()
}

func main() {
	flag.Parse()

	if f := setupLogging(*debugFlag); f != nil {
		defer f.Close()
	}

	cfg, err := config.Load(*configPath, config.Terminal())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	g, err := NewGame(cfg, *soundFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	err = g.run()
	g.cleanup()
	if err != nil && !errors.Is(err, errQuit) {
		fmt.Fprintf(os.Stderr, "bouncer stopped: %v\n", err)
		os.Exit(1)
	}
}
