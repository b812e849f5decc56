package game

import (
	"go.uber.org/zap"

	"github.com/witchwood/sim/internal/system"
)

// Screen is the top-level application state.
type Screen uint8

const (
	ScreenTitle Screen = iota
	ScreenGame
	ScreenQuit
)

func (s Screen) String() string {
	switch s {
	case ScreenTitle:
		return "title"
	case ScreenGame:
		return "game"
	case ScreenQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Factory builds the game for a round, counting from zero.
type Factory func(round int) (*Game, error)

// App switches between the title screen and a running game:
// Title -> Game on Start, Game -> Title on game over, and Quit when a game
// cannot be built or on request.
type App struct {
	screen  Screen
	game    *Game
	newGame Factory
	rounds  int
	log     *zap.Logger
}

func NewApp(newGame Factory, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{screen: ScreenTitle, newGame: newGame, log: log}
}

func (a *App) Screen() Screen { return a.screen }

// Game is the running game, nil outside ScreenGame.
func (a *App) Game() *Game { return a.game }

// Rounds counts the games started so far.
func (a *App) Rounds() int { return a.rounds }

// Start leaves the title screen. A construction error quits the app and is
// returned.
func (a *App) Start() error {
	if a.screen != ScreenTitle {
		return nil
	}
	g, err := a.newGame(a.rounds)
	if err != nil {
		a.log.Error("game construction failed", zap.Error(err))
		a.screen = ScreenQuit
		return err
	}
	a.rounds++
	a.game = g
	a.screen = ScreenGame
	return nil
}

// Frame advances the running game. It is a no-op on other screens.
func (a *App) Frame(in system.Input) Screen {
	if a.screen != ScreenGame {
		return a.screen
	}
	if a.game.Update(in) == GameOver {
		a.End()
	}
	return a.screen
}

// End drops the running game and returns to the title screen.
func (a *App) End() {
	if a.screen != ScreenGame {
		return
	}
	a.log.Info("back to title", zap.Int("frames", a.game.Frame()))
	a.game = nil
	a.screen = ScreenTitle
}

func (a *App) Quit() {
	a.game = nil
	a.screen = ScreenQuit
}
