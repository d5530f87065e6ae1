package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/nikki/internal/tui/keys"
	"github.com/matheus3301/nikki/internal/tui/model"
	"github.com/matheus3301/nikki/internal/tui/ui"
	"github.com/matheus3301/nikki/internal/tui/views"
	"github.com/rivo/tview"
)

// Page names.
const (
	pageCapture = "capture"
	pageQueue   = "queue"
	pageJournal = "journal"
	pageSheets  = "sheets"
	pageHelp    = "help"
)

const (
	refreshInterval = 5 * time.Second
	headerHeight    = 6
)

// App is the capture window.
type App struct {
	app      *tview.Application
	root     *tview.Flex
	pages    *ui.Pages
	vm       *model.ViewModel
	registry *keys.Registry
	profile  string

	info      *ui.Info
	menu      *ui.Menu
	logo      *ui.Logo
	crumbs    *ui.Crumbs
	prompt    *ui.Prompt
	flashBar  *ui.FlashBar
	statusBar *views.StatusBar

	history  *views.HistoryView
	composer *views.Composer
	queue    *views.QueueView
	journal  *views.JournalView
	sheets   *views.SheetsView
	help     *views.HelpView

	components   map[string]ui.Component
	promptActive bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(d model.Daemon, profile string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		pages:     ui.NewPages(),
		vm:        model.NewViewModel(d),
		registry:  keys.NewRegistry(),
		profile:   profile,
		info:      ui.NewInfo(theme),
		menu:      ui.NewMenu(theme, headerHeight),
		logo:      ui.NewLogo(theme),
		crumbs:    ui.NewCrumbs(theme, profile),
		prompt:    ui.NewPrompt(theme),
		flashBar:  ui.NewFlashBar(theme),
		statusBar: views.NewStatusBar(theme),
		history:   views.NewHistoryView(theme),
		composer:  views.NewComposer(theme),
		queue:     views.NewQueueView(theme),
		journal:   views.NewJournalView(theme),
		sheets:    views.NewSheetsView(theme),
		help:      views.NewHelpView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}
	a.components = map[string]ui.Component{
		pageCapture: a.history,
		pageQueue:   a.queue,
		pageJournal: a.journal,
		pageSheets:  a.sheets,
		pageHelp:    a.help,
	}

	a.statusBar.SetProfile(profile)
	a.prompt.SetCommands(CommandNames())
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "Quit/Back", Visible: true,
		Handler: func() {
			if a.pages.Overlaid() {
				a.back()
				return
			}
			a.Stop()
		},
	})
	a.registry.AddGlobal("help", &keys.Action{
		Rune: '?', Key: tcell.KeyRune,
		Description: "Help", Visible: true,
		Handler: func() { a.show(pageHelp, nil) },
	})
	a.registry.AddGlobal("command", &keys.Action{
		Rune: ':', Key: tcell.KeyRune,
		Description: "Command", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal("drain", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "Drain", Visible: true,
		Handler: func() { go func() { _ = a.vm.Drain(a.ctx) }() },
	})
	a.registry.AddGlobal("queue", &keys.Action{
		Rune: 'Q', Key: tcell.KeyRune,
		Description: "Queue", Visible: true,
		Handler: func() { a.show(pageQueue, a.vm.LoadQueue) },
	})
	a.registry.AddGlobal("journal", &keys.Action{
		Rune: 'J', Key: tcell.KeyRune,
		Description: "Journal", Visible: true,
		Handler: func() { a.show(pageJournal, a.vm.LoadJournal) },
	})
	a.registry.AddGlobal("sheets", &keys.Action{
		Rune: 'S', Key: tcell.KeyRune,
		Description: "Sheets", Visible: true,
		Handler: func() { a.show(pageSheets, a.vm.LoadSheets) },
	})

	a.registry.AddView(pageCapture, "write", &keys.Action{
		Rune: 'i', Key: tcell.KeyRune,
		Description: "Write",
		Handler: func() { a.app.SetFocus(a.composer.InputField) },
	})
	a.registry.AddView(pageCapture, "filter", &keys.Action{
		Rune: '/', Key: tcell.KeyRune,
		Description: "Filter",
		Handler: func() { a.showPrompt(ui.PromptFilter) },
	})
}

func (a *App) setupCallbacks() {
	a.composer.SetOnSubmit(func(text string) {
		go func() { _ = a.vm.Submit(a.ctx, text) }()
	})
	a.composer.SetOnEscape(func() {
		a.app.SetFocus(a.history)
	})

	a.history.SetSelectedFunc(func(int, string, string, rune) {
		if text := a.history.Selected(); text != "" {
			a.composer.SetText(text)
			a.app.SetFocus(a.composer.InputField)
		}
	})

	a.sheets.SetOnSelect(func(name string) {
		a.back()
		go func() { _ = a.vm.SelectSheet(a.ctx, name) }()
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		case ui.PromptFilter:
			a.history.SetFilter(text)
		}
	})
	a.prompt.SetOnCancel(func() {
		a.hidePrompt()
		if a.prompt.Mode() == ui.PromptFilter {
			a.history.ClearFilter()
		}
	})

	a.pages.SetOnChange(func(stack []string) {
		titles := make([]string, 0, len(stack))
		for _, page := range stack {
			if c, ok := a.components[page]; ok {
				titles = append(titles, c.Name())
			}
		}
		a.crumbs.Update(titles)
		a.menu.Update(a.hints(a.pages.Current()))
	})
}

func (a *App) setupLayout() {
	capture := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.history, 0, 1, false).
		AddItem(a.composer, 3, 0, true)

	a.pages.AddPage(pageCapture, capture, true, false)
	a.pages.AddPage(pageQueue, a.queue, true, false)
	a.pages.AddPage(pageJournal, a.journal, true, false)
	a.pages.AddPage(pageSheets, a.sheets, true, false)
	a.pages.AddPage(pageHelp, a.help, true, false)

	header := tview.NewFlex().
		AddItem(a.info, 40, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(a.logo, 16, 0, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerHeight, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.SetRoot(pageCapture)
	a.app.SetRoot(a.root, true)
	a.app.SetFocus(a.composer.InputField)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if a.promptActive {
			return event
		}

		// Text input widgets get every key.
		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}

		if event.Key() == tcell.KeyEscape {
			if a.pages.Overlaid() {
				a.back()
				return nil
			}
			if a.history.Filter() != "" {
				a.history.ClearFilter()
				return nil
			}
			return event
		}

		if a.registry.HandleEvent(a.pages.Current(), event) {
			return nil
		}
		return event
	})
}

// runCommand executes a parsed ':' command.
func (a *App) runCommand(cmd Command) {
	if !cmd.Known() {
		if cmd.Name != "" {
			a.vm.Flash.Warn("Unknown command: " + cmd.Name)
		}
		return
	}

	switch cmd.Name {
	case "quit":
		a.Stop()
	case "help":
		a.show(pageHelp, nil)
	case "upload":
		go func() { _ = a.vm.UploadAndSubmit(a.ctx, cmd.Args) }()
	case "sheet":
		if cmd.Args == "" {
			a.show(pageSheets, a.vm.LoadSheets)
			return
		}
		go func() { _ = a.vm.SelectSheet(a.ctx, cmd.Args) }()
	case "sheets":
		a.show(pageSheets, a.vm.LoadSheets)
	case "drain":
		go func() { _ = a.vm.Drain(a.ctx) }()
	case "queue":
		a.show(pageQueue, a.vm.LoadQueue)
	case "journal":
		a.show(pageJournal, a.vm.LoadJournal)
	case "clear":
		go func() { _ = a.vm.ClearHistory(a.ctx) }()
	}
}

// show opens page over the capture page and loads its data.
func (a *App) show(page string, load func(context.Context) error) {
	if !a.pages.Open(page) {
		return
	}
	a.focusCurrent()
	if load != nil {
		go func() {
			if err := load(a.ctx); err != nil {
				a.vm.Flash.Err(err)
			}
		}()
	}
}

// hints lists the current page's hints followed by the global bindings.
func (a *App) hints(page string) []ui.MenuHint {
	var out []ui.MenuHint
	if c, ok := a.components[page]; ok {
		out = append(out, c.Hints()...)
	}
	for _, h := range a.registry.Hints(page) {
		if h.Global {
			out = append(out, ui.MenuHint{Key: h.Key, Description: h.Description, Global: true})
		}
	}
	return out
}

func (a *App) back() {
	a.pages.Back()
	a.focusCurrent()
	a.render()
}

func (a *App) focusCurrent() {
	switch a.pages.Current() {
	case pageCapture:
		a.app.SetFocus(a.composer.InputField)
	case pageQueue:
		a.app.SetFocus(a.queue)
	case pageJournal:
		a.app.SetFocus(a.journal)
	case pageSheets:
		a.app.SetFocus(a.sheets)
	case pageHelp:
		a.app.SetFocus(a.help)
	}
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.promptActive = true
	a.prompt.Activate(mode)
	a.root.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt.InputField)
}

func (a *App) hidePrompt() {
	a.promptActive = false
	a.root.ResizeItem(a.prompt, 0, 0)
	a.focusCurrent()
}

// render copies the view model into the widgets. Only the front page is
// redrawn so table selections survive background refreshes.
func (a *App) render() {
	st := a.vm.GetStatus()
	a.info.Update(&ui.InfoData{
		Profile:   a.profile,
		State:     st.State,
		Sheet:     st.Sheet,
		Queued:    st.QueueDepth,
		Delivered: st.Deliveries,
		Uptime:    time.Duration(st.UptimeSeconds) * time.Second,
	})
	a.statusBar.SetState(st.State, st.Sheet, st.QueueDepth, st.Draining)
	a.flashBar.Update(a.vm.Flash.GetMessage())

	history := a.vm.GetHistory()
	a.composer.SetRecall(history)

	switch a.pages.Current() {
	case pageCapture:
		a.history.Update(history)
	case pageQueue:
		a.queue.Update(a.vm.GetQueue())
	case pageJournal:
		a.journal.Update(a.vm.GetJournal())
	case pageSheets:
		a.sheets.Update(a.vm.GetSheets(), st.Sheet)
	}
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	defer a.cancel()
	go a.start()
	return a.app.Run()
}

func (a *App) start() {
	if err := a.vm.LoadStatus(a.ctx); err != nil {
		a.vm.Flash.Err(err)
	}
	_ = a.vm.LoadHistory(a.ctx)
	_ = a.vm.LoadQueue(a.ctx)
	go a.vm.Watch(a.ctx)
	a.refreshLoop()
}

func (a *App) refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.vm.RefreshCh():
		case <-a.vm.Flash.Watch():
		case <-ticker.C:
			_ = a.vm.LoadStatus(a.ctx)
		case <-a.ctx.Done():
			return
		}
		a.app.QueueUpdateDraw(a.render)
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
