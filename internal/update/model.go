package update

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/notify"
	"github.com/sandeepkv93/tasklist/internal/reminder"
	"github.com/sandeepkv93/tasklist/internal/scheduler"
	"github.com/sandeepkv93/tasklist/internal/store"
)

const reminderLogLimit = 20

type StatusBar struct {
	Text    string
	IsError bool
}

type KeyMap struct {
	Up       string
	Down     string
	MoveUp   string
	MoveDown string
	Toggle   string
	Delete   string
	Clear    string
	Sort     string
	Add      string
	Search   string
	Palette  string
	Help     string
	Quit     string
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       "k",
		Down:     "j",
		MoveUp:   "K",
		MoveDown: "J",
		Toggle:   " ",
		Delete:   "d",
		Clear:    "c",
		Sort:     "s",
		Add:      "a",
		Search:   "f",
		Palette:  "/",
		Help:     "?",
		Quit:     "q",
	}
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// Deps wires the model to the running application. Store is required.
type Deps struct {
	Store     *store.Store
	Reminders *reminder.Scheduler
	Engine    *scheduler.Engine
	Feedback  *notify.Log
	Logger    *slog.Logger
	SortKey   model.SortKey
	Location  *time.Location
	Now       func() time.Time
}

type Model struct {
	Cursor        int
	Query         string
	SortKey       model.SortKey
	Palette       CommandPaletteState
	HelpVisible   bool
	ConfirmDelete bool
	ReminderLog   []reminder.Event
	Status        StatusBar
	Keys          KeyMap
	Quitting      bool
	LastError     error

	ctx           context.Context
	store         *store.Store
	reminders     *reminder.Scheduler
	engine        *scheduler.Engine
	feedback      *notify.Log
	logger        *slog.Logger
	loc           *time.Location
	now           func() time.Time
	pendingDelete string

	commandInput textinput.Model
	progressBar  progress.Model
	helpModel    help.Model
	width        int
}

// TickMsg carries one evaluation instant from the tick engine.
type TickMsg struct {
	At time.Time
}

// TicksClosedMsg is sent once the engine channel has been closed.
type TicksClosedMsg struct{}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

func NewModel(ctx context.Context, deps Deps) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		SortKey:   deps.SortKey,
		Keys:      DefaultKeyMap(),
		ctx:       ctx,
		store:     deps.Store,
		reminders: deps.Reminders,
		engine:    deps.Engine,
		feedback:  deps.Feedback,
		logger:    deps.Logger,
		loc:       deps.Location,
		now:       deps.Now,
	}
	if m.SortKey == "" {
		m.SortKey = model.SortByCreatedAt
	}
	if m.feedback == nil {
		m.feedback = notify.NewLog(0)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 56

	m.progressBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage())
	m.helpModel = help.New()
}

func (m Model) windows() reminder.Windows {
	if m.reminders != nil {
		return m.reminders.Windows()
	}
	return reminder.DefaultWindows()
}
