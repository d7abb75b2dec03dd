package main

import (
	"strings"
	"testing"

	"github.com/nsf/termbox-go"

	"hadydotai/fbnx-amm/curve"
)

func quoteInto(t *testing.T, ui *termUI, line string) {
	t.Helper()
	table, intent, err := ui.builder.Build(line)
	ui.quoteReady(renderResult{line: line, table: table, intent: intent, err: err})
}

func typeLine(ui *termUI, line string) {
	for _, ch := range line {
		if ch == ' ' {
			ui.handleKey(termbox.Event{Type: termbox.EventKey, Key: termbox.KeySpace})
			continue
		}
		ui.handleKey(termbox.Event{Type: termbox.EventKey, Ch: ch})
	}
}

func TestTermUIApplyAndDiscard(t *testing.T) {
	ui := newTermUI(newTestBuilder(t, curve.Fees{}))
	ui.showPool()

	quoteInto(t, ui, "swap 1000 AAA")
	if ui.mode != modeAwaitDecision || ui.pending == nil {
		t.Fatalf("expected a pending quote, mode %d", ui.mode)
	}
	if quit := ui.handleKey(termbox.Event{Type: termbox.EventKey, Ch: 'y'}); quit {
		t.Fatalf("apply should not end the session")
	}
	if len(ui.applied) != 1 || ui.pending != nil || ui.mode != modePrompt {
		t.Fatalf("apply mismatch: applied %d pending %v mode %d", len(ui.applied), ui.pending, ui.mode)
	}
	if got := ui.builder.view.State.Reserves.TokenA; got != 1_001_000 {
		t.Fatalf("token A after apply mismatch: got %d want 1001000", got)
	}

	quoteInto(t, ui, "swap 1000 BBB")
	ui.handleKey(termbox.Event{Type: termbox.EventKey, Ch: 'n'})
	if len(ui.applied) != 1 || ui.pending != nil {
		t.Fatalf("discard should leave the applied list alone")
	}
	if got := ui.builder.view.State.Reserves.TokenA; got != 1_001_000 {
		t.Fatalf("discard changed the pool: token A %d", got)
	}
}

func TestTermUIRejectedQuote(t *testing.T) {
	ui := newTermUI(newTestBuilder(t, curve.Fees{}))
	quoteInto(t, ui, "withdraw 5000000 BBB")
	if ui.pending != nil {
		t.Fatalf("rejected quote should not be pending")
	}
	if !strings.Contains(ui.status, "withdraw 5000000 BBB") {
		t.Fatalf("status should name the failed intent: %q", ui.status)
	}
	ui.handleKey(termbox.Event{Type: termbox.EventKey, Ch: 'y'})
	if len(ui.applied) != 0 || !strings.HasPrefix(ui.status, "Nothing to apply") {
		t.Fatalf("nothing should be applied, status %q", ui.status)
	}
}

func TestTermUIPrompt(t *testing.T) {
	ui := newTermUI(newTestBuilder(t, curve.Fees{}))
	ui.prompt(promptHelp)

	typeLine(ui, "swap 10 AAX")
	ui.handleKey(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyBackspace2})
	typeLine(ui, "A")
	if got := ui.editor.text(); got != "swap 10 AAA" {
		t.Fatalf("prompt buffer mismatch: %q", got)
	}

	ui.editor.reset()
	ui.handleKey(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEnter})
	if ui.status != "Intent cannot be empty." || ui.mode != modePrompt {
		t.Fatalf("empty intent should stay at the prompt, status %q", ui.status)
	}

	if quit := ui.handleKey(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEsc}); !quit {
		t.Fatalf("escape with nothing quoted should end the session")
	}

	quoteInto(t, ui, "swap 10 AAA")
	ui.handleKey(termbox.Event{Type: termbox.EventKey, Ch: 'c'})
	if ui.mode != modePrompt {
		t.Fatalf("c should open the prompt")
	}
	if quit := ui.handleKey(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEsc}); quit || ui.mode != modeAwaitDecision {
		t.Fatalf("escape should return to the pending quote")
	}
	if ui.pending == nil {
		t.Fatalf("returning from the prompt should keep the quote")
	}
}

func TestTermUIScroll(t *testing.T) {
	ui := newTermUI(newTestBuilder(t, curve.Fees{}))
	ui.setView("a\nb\nc\n")
	ui.handleKey(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowDown})
	ui.handleKey(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowDown})
	ui.handleKey(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowDown})
	if ui.scroll != 2 {
		t.Fatalf("scroll should stop at the last line, got %d", ui.scroll)
	}
	ui.handleKey(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyPgup})
	if ui.scroll != 0 {
		t.Fatalf("page up should stop at the top, got %d", ui.scroll)
	}
	if !strings.Contains(ui.header(), "applied 0") {
		t.Fatalf("header mismatch: %q", ui.header())
	}
}
