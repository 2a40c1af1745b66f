package remote

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		code   Code
		want   Action
		wantOK bool
	}{
		{37, ActionLeft, true},
		{38, ActionUp, true},
		{39, ActionRight, true},
		{40, ActionDown, true},
		{13, ActionConfirm, true},
		{10009, ActionBack, true},
		{27, ActionNone, false},
		{0, ActionNone, false},
		{65, ActionNone, false},
	}

	for _, tt := range tests {
		got, ok := Translate(tt.code)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("Translate(%d) = %v, %v; want %v, %v", tt.code, got, ok, tt.want, tt.wantOK)
		}
	}
}

func recorder(calls *[]string) Bindings {
	return Bindings{
		OnLeft:    func() { *calls = append(*calls, "left") },
		OnRight:   func() { *calls = append(*calls, "right") },
		OnUp:      func() { *calls = append(*calls, "up") },
		OnDown:    func() { *calls = append(*calls, "down") },
		OnConfirm: func() { *calls = append(*calls, "confirm") },
		OnBack:    func() { *calls = append(*calls, "back") },
	}
}

func TestBindingsHandleInvokesAtMostOneCallback(t *testing.T) {
	var calls []string
	b := recorder(&calls)

	for _, code := range []Code{KeyLeft, KeyRight, KeyUp, KeyDown, KeyEnter, KeyBack} {
		if !b.Handle(code) {
			t.Fatalf("Handle(%d) should report the code as recognized", code)
		}
	}
	want := []string{"left", "right", "up", "down", "confirm", "back"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
}

func TestBindingsHandleUnknownCodeIsNoop(t *testing.T) {
	var calls []string
	b := recorder(&calls)
	if b.Handle(99) {
		t.Fatalf("unknown code should not be reported as handled")
	}
	if len(calls) != 0 {
		t.Fatalf("unexpected callbacks: %v", calls)
	}
}

func TestBindingsHandleWithoutCallbackStillSuppresses(t *testing.T) {
	var b Bindings
	if !b.Handle(KeyBack) {
		t.Fatalf("recognized code without a callback should still be handled")
	}
}

func TestDispatcherScopes(t *testing.T) {
	d := NewDispatcher()
	var calls []string

	releaseA := d.Listen(Bindings{OnBack: func() { calls = append(calls, "a") }})
	releaseB := d.Listen(Bindings{OnBack: func() { calls = append(calls, "b") }})
	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", d.Len())
	}

	d.Dispatch(KeyBack)
	if !reflect.DeepEqual(calls, []string{"a", "b"}) {
		t.Fatalf("calls = %v, want [a b]", calls)
	}

	releaseA()
	releaseA()
	if d.Len() != 1 {
		t.Fatalf("Len() after release = %d, want 1", d.Len())
	}

	calls = nil
	d.Dispatch(KeyBack)
	if !reflect.DeepEqual(calls, []string{"b"}) {
		t.Fatalf("calls = %v, want [b]", calls)
	}

	releaseB()
	if d.Len() != 0 {
		t.Fatalf("dangling listeners: %d", d.Len())
	}
	if !d.Dispatch(KeyBack) {
		t.Fatalf("recognized code should be handled even with no listeners")
	}
	if d.Dispatch(Code(1)) {
		t.Fatalf("unrecognized code should not be handled")
	}
}

func TestDispatcherCallbackMayReleaseScope(t *testing.T) {
	d := NewDispatcher()
	var release func()
	count := 0
	release = d.Listen(Bindings{OnConfirm: func() {
		count++
		release()
	}})

	d.Dispatch(KeyEnter)
	d.Dispatch(KeyEnter)
	if count != 1 {
		t.Fatalf("callback ran %d times, want 1", count)
	}
}

func TestDispatcherSkipsScopeReleasedMidDispatch(t *testing.T) {
	d := NewDispatcher()
	var releaseB func()
	var calls []string
	d.Listen(Bindings{OnBack: func() {
		calls = append(calls, "a")
		releaseB()
	}})
	releaseB = d.Listen(Bindings{OnBack: func() { calls = append(calls, "b") }})

	d.Dispatch(KeyBack)
	if !reflect.DeepEqual(calls, []string{"a"}) {
		t.Fatalf("calls = %v, want [a]", calls)
	}
}

func TestCodeForKey(t *testing.T) {
	tests := []struct {
		msg    tea.KeyMsg
		want   Code
		wantOK bool
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, KeyLeft, true},
		{tea.KeyMsg{Type: tea.KeyRight}, KeyRight, true},
		{tea.KeyMsg{Type: tea.KeyUp}, KeyUp, true},
		{tea.KeyMsg{Type: tea.KeyDown}, KeyDown, true},
		{tea.KeyMsg{Type: tea.KeyEnter}, KeyEnter, true},
		{tea.KeyMsg{Type: tea.KeyEsc}, KeyBack, true},
		{tea.KeyMsg{Type: tea.KeyBackspace}, KeyBack, true},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, 0, false},
		{tea.KeyMsg{Type: tea.KeyTab}, 0, false},
	}

	for _, tt := range tests {
		got, ok := CodeForKey(tt.msg)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("CodeForKey(%q) = %d, %v; want %d, %v", tt.msg.String(), got, ok, tt.want, tt.wantOK)
		}
	}
}
