package main

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nsf/termbox-go"
)

type uiMode uint8

const (
	modeBusy uiMode = iota
	modeAwaitDecision
	modePrompt
)

const (
	decisionHelp  = "y=apply n=discard c=change q=quit, arrows/PgUp/PgDn scroll"
	promptHelp    = `Enter an intent, e.g. "swap 1.5 SOL", "deposit 10 LP", "withdraw 2 USDC".`
	flashDuration = 350 * time.Millisecond
)

var spinnerFrames = []rune{'|', '/', '-', '\\'}

type renderResult struct {
	line   string
	table  string
	intent *Intent
	err    error
}

// lineEditor is the single line intent prompt.
type lineEditor struct {
	buf   []rune
	blink bool
}

func (e *lineEditor) reset() {
	e.buf = e.buf[:0]
	e.blink = true
}

func (e *lineEditor) text() string   { return strings.TrimSpace(string(e.buf)) }
func (e *lineEditor) render() string { return "> " + string(e.buf) }

func (e *lineEditor) handle(ev termbox.Event) {
	switch {
	case ev.Key == termbox.KeyBackspace || ev.Key == termbox.KeyBackspace2:
		if len(e.buf) > 0 {
			e.buf = e.buf[:len(e.buf)-1]
		}
	case ev.Ch != 0:
		e.buf = append(e.buf, ev.Ch)
	case ev.Key == termbox.KeySpace:
		e.buf = append(e.buf, ' ')
	}
}

// termUI is one simulation session: quote an intent, then apply it to the in-memory pool or
// throw it away.
type termUI struct {
	builder  *QuoteBuilder
	resultCh chan renderResult
	done     chan struct{}

	mode   uiMode
	editor lineEditor
	status string

	view       []string
	scroll     int
	flashUntil time.Time

	computing string
	spinner   int

	// quoted is the last intent line that finished computing. pending is its quote when the
	// pool accepted it.
	quoted  string
	pending *Intent
	applied []*Intent
}

func newTermUI(builder *QuoteBuilder) *termUI {
	return &termUI{
		builder:  builder,
		resultCh: make(chan renderResult),
		done:     make(chan struct{}),
		editor:   lineEditor{blink: true},
	}
}

// Run drives the session until the user quits and returns the intents applied to the pool,
// in order. An empty initialIntent starts at the prompt.
func (ui *termUI) Run(initialIntent string) ([]*Intent, error) {
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	defer termbox.Close()
	defer close(ui.done)
	eventCh := make(chan termbox.Event)
	go func() {
		for {
			eventCh <- termbox.PollEvent()
		}
	}()
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()

	ui.showPool()
	if strings.TrimSpace(initialIntent) == "" {
		ui.prompt(promptHelp)
	} else {
		ui.compute(initialIntent)
	}
	for {
		ui.draw()
		select {
		case ev := <-eventCh:
			switch ev.Type {
			case termbox.EventError:
				return ui.applied, ev.Err
			case termbox.EventKey:
				if ui.handleKey(ev) {
					return ui.applied, nil
				}
			}
		case res := <-ui.resultCh:
			ui.quoteReady(res)
		case <-ticker.C:
			ui.tick()
		}
	}
}

func (ui *termUI) compute(line string) {
	ui.mode = modeBusy
	ui.computing = line
	ui.spinner = 0
	ui.status = ""
	go func() {
		table, intent, err := ui.builder.Build(line)
		select {
		case ui.resultCh <- renderResult{line: line, table: table, intent: intent, err: err}:
		case <-ui.done:
		}
	}()
}

func (ui *termUI) quoteReady(res renderResult) {
	ui.computing = ""
	ui.quoted = res.line
	ui.pending = res.intent
	ui.mode = modeAwaitDecision
	if res.table != "" {
		ui.setView(res.table)
	}
	if res.err != nil {
		ui.status = fmt.Sprintf("%s: %v. c=change q=quit", res.line, res.err)
		return
	}
	ui.status = decisionHelp
}

func (ui *termUI) tick() {
	if ui.mode == modeBusy {
		ui.spinner = (ui.spinner + 1) % len(spinnerFrames)
	}
	ui.editor.blink = ui.mode != modePrompt || !ui.editor.blink
}

func (ui *termUI) setView(table string) {
	ui.view = splitLines(table)
	ui.scroll = 0
	ui.flashUntil = time.Now().Add(flashDuration)
}

func (ui *termUI) showPool() {
	ui.setView(ui.builder.Summary())
}

func (ui *termUI) prompt(status string) {
	ui.mode = modePrompt
	ui.editor.reset()
	ui.status = status
}

// applyPending commits the quoted intent and shows the pool as it now stands.
func (ui *termUI) applyPending() {
	if ui.pending == nil {
		ui.status = "Nothing to apply. " + decisionHelp
		return
	}
	if err := ui.builder.Apply(ui.pending); err != nil {
		ui.status = fmt.Sprintf("apply failed: %v", err)
		return
	}
	ui.applied = append(ui.applied, ui.pending)
	ui.pending = nil
	ui.showPool()
	ui.prompt(fmt.Sprintf("Applied %q, %d applied so far. Enter the next intent.", ui.quoted, len(ui.applied)))
}

func (ui *termUI) discardPending() {
	ui.pending = nil
	ui.showPool()
	ui.prompt("Discarded. " + promptHelp)
}

// handleKey reports whether the session should end.
func (ui *termUI) handleKey(ev termbox.Event) bool {
	if ev.Key == termbox.KeyCtrlC {
		return true
	}
	if ui.scrollKey(ev) {
		return false
	}
	switch ui.mode {
	case modeBusy:
		return ev.Key == termbox.KeyEsc
	case modeAwaitDecision:
		return ui.decisionKey(ev)
	case modePrompt:
		return ui.promptKey(ev)
	}
	return false
}

func (ui *termUI) decisionKey(ev termbox.Event) bool {
	if ev.Key == termbox.KeyEsc {
		return true
	}
	switch ev.Ch {
	case 'y', 'Y':
		ui.applyPending()
	case 'n', 'N':
		ui.discardPending()
	case 'c', 'C':
		ui.prompt(promptHelp)
	case 'q', 'Q':
		return true
	}
	return false
}

func (ui *termUI) promptKey(ev termbox.Event) bool {
	switch ev.Key {
	case termbox.KeyEnter:
		line := ui.editor.text()
		if line == "" {
			ui.status = "Intent cannot be empty."
			return false
		}
		ui.editor.reset()
		ui.compute(line)
	case termbox.KeyEsc:
		// Nothing quoted yet means there is nothing to go back to.
		if ui.quoted == "" {
			return true
		}
		ui.mode = modeAwaitDecision
		ui.editor.reset()
		ui.status = decisionHelp
	default:
		ui.editor.handle(ev)
	}
	return false
}

func (ui *termUI) scrollKey(ev termbox.Event) bool {
	_, height := termbox.Size()
	page := max(height-3, 1)
	switch ev.Key {
	case termbox.KeyArrowUp:
		ui.scroll--
	case termbox.KeyArrowDown:
		ui.scroll++
	case termbox.KeyPgup:
		ui.scroll -= page
	case termbox.KeyPgdn:
		ui.scroll += page
	default:
		return false
	}
	ui.scroll = min(max(ui.scroll, 0), max(len(ui.view)-1, 0))
	return true
}

func (ui *termUI) draw() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	width, height := termbox.Size()
	area := max(height-3, 0)

	ui.drawLine(0, width, ui.header(), termbox.ColorDefault|termbox.AttrReverse, termbox.ColorDefault)
	fg, bg := termbox.ColorDefault, termbox.ColorDefault
	if time.Now().Before(ui.flashUntil) {
		fg, bg = termbox.ColorWhite|termbox.AttrBold, termbox.ColorGreen
	}
	for row := 0; row < area && ui.scroll+row < len(ui.view); row++ {
		ui.drawLine(1+row, width, ui.view[ui.scroll+row], fg, bg)
	}
	if height >= 2 {
		ui.drawLine(height-2, width, ui.statusLine(), termbox.ColorDefault, termbox.ColorDefault)
	}
	if height >= 1 {
		ui.drawLine(height-1, width, ui.promptLine(), termbox.ColorDefault, termbox.ColorDefault)
		ui.drawCursor(width, height-1)
	}
	termbox.Flush()
}

func (ui *termUI) drawLine(y, width int, text string, fg, bg termbox.Attribute) {
	if y < 0 {
		return
	}
	col := 0
	for _, ch := range text {
		if col >= width {
			break
		}
		termbox.SetCell(col, y, ch, fg, bg)
		col++
	}
}

func (ui *termUI) header() string {
	h := fmt.Sprintf(" fbnx-amm simulator | applied %d", len(ui.applied))
	if ui.pending != nil {
		h += " | 1 pending"
	}
	if ui.scroll > 0 {
		h += fmt.Sprintf(" | line %d/%d", ui.scroll+1, len(ui.view))
	}
	return h
}

func (ui *termUI) statusLine() string {
	switch {
	case ui.mode == modeBusy:
		return fmt.Sprintf("%c quoting %q", spinnerFrames[ui.spinner%len(spinnerFrames)], ui.computing)
	case ui.status != "":
		return ui.status
	case ui.mode == modePrompt:
		return promptHelp
	}
	return decisionHelp
}

func (ui *termUI) promptLine() string {
	switch {
	case ui.mode == modePrompt:
		return ui.editor.render()
	case ui.mode == modeBusy:
		return "> ..."
	case ui.quoted != "":
		return "> quoted: " + ui.quoted
	}
	return "> press c to enter a new intent"
}

func (ui *termUI) drawCursor(width, row int) {
	if ui.mode != modePrompt || row < 0 || width <= 0 {
		return
	}
	col := min(utf8.RuneCountInString(ui.editor.render()), width-1)
	ch := ' '
	if ui.editor.blink {
		ch = '_'
	}
	termbox.SetCell(col, row, ch, termbox.ColorDefault, termbox.ColorDefault)
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
