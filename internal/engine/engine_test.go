package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quietpawn/quietpawn/internal/adapters/realclock"
	"github.com/quietpawn/quietpawn/internal/testing/fakes/fakeclock"
	"github.com/quietpawn/quietpawn/internal/testing/fakes/fakeengine"
	"github.com/quietpawn/quietpawn/internal/uci"
)

// recordingHandler funnels dispatched events into channels so tests can
// wait for the reader goroutine.
type recordingHandler struct {
	events chan string
	infos  chan uci.SearchInfo
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		events: make(chan string, 16),
		infos:  make(chan uci.SearchInfo, 16),
	}
}

func (h *recordingHandler) OnBestMove(move string) {
	h.events <- "bestmove " + move
}

func (h *recordingHandler) OnBestMoveWithPonder(move, ponder string) {
	h.events <- "ponder " + move + " " + ponder
}

func (h *recordingHandler) OnSearchInfo(info uci.SearchInfo) {
	h.infos <- info
}

func (h *recordingHandler) next(t *testing.T) string {
	t.Helper()
	select {
	case ev := <-h.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a dispatched event")
		return ""
	}
}

func testOptions() Options {
	return Options{
		Binary:       "/usr/bin/stockfish",
		Threads:      1,
		HashMB:       512,
		Ponder:       true,
		SkillLevel:   0,
		ReadyTimeout: 3 * time.Second,
	}
}

func TestStartGreetingAndOptions(t *testing.T) {
	proc := fakeengine.Scripted()
	launcher := &fakeengine.Launcher{Process: proc}
	eng := New(launcher, fakeclock.New(time.Now()), testOptions())

	if err := eng.Start(newRecordingHandler()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer eng.Close()

	if got := eng.Identity().Name; got != "FakeFish 1.0" {
		t.Errorf("Identity().Name = %q, want %q", got, "FakeFish 1.0")
	}
	if got := eng.Identity().Author; got != "quietpawn developers" {
		t.Errorf("Identity().Author = %q", got)
	}

	declared := eng.DeclaredOptions()
	if len(declared) != 1 || declared[0].Name != "Hash" {
		t.Errorf("DeclaredOptions = %+v, want the Hash declaration", declared)
	}

	want := []string{
		"uci",
		"setoption name Threads value 1",
		"setoption name Hash value 512",
		"setoption name Ponder value true",
		"setoption name Skill Level value 0",
		"isready",
	}
	got := proc.Commands()
	if len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if !eng.Available() {
		t.Error("Available = false after a clean start")
	}
}

func TestWaitReadyPromptSignal(t *testing.T) {
	proc := fakeengine.Scripted()
	eng := New(&fakeengine.Launcher{Process: proc}, fakeclock.New(time.Now()), testOptions())
	if err := eng.Start(newRecordingHandler()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer eng.Close()

	// The fake answers isready synchronously, so the rendezvous must
	// return without consuming any fake time.
	for i := 0; i < 3; i++ {
		if err := eng.WaitReady(); err != nil {
			t.Fatalf("WaitReady #%d: %v", i, err)
		}
	}
}

// An engine that never answers isready must not block forever: the
// rendezvous gives up after the configured budget and reports the engine
// unavailable instead of raising a fatal error.
func TestWaitReadyTimeout(t *testing.T) {
	proc := fakeengine.NewProcess(func(cmd string, p *fakeengine.Process) {
		if cmd == "uci" {
			p.Emit("id name MuteFish")
			p.Emit("uciok")
		}
		// isready goes unanswered.
	})
	clk := fakeclock.New(time.Now())
	eng := New(&fakeengine.Launcher{Process: proc}, clk, testOptions())

	errCh := make(chan error, 1)
	go func() { errCh <- eng.Start(newRecordingHandler()) }()

	waitAdvancing(t, clk, errCh, func(err error) {
		if !errors.Is(err, ErrEngineUnavailable) {
			t.Fatalf("Start error = %v, want ErrEngineUnavailable", err)
		}
		if eng.Available() {
			t.Error("Available = true after a missed rendezvous")
		}
	})

	// Shut down the reader; the close grace period runs on the fake
	// clock too.
	closeCh := make(chan error, 1)
	go func() { closeCh <- eng.Close() }()
	waitAdvancing(t, clk, closeCh, func(err error) {
		if err != nil {
			t.Errorf("Close: %v", err)
		}
	})
}

// waitAdvancing drives the fake clock forward until the operation under
// test delivers its result.
func waitAdvancing(t *testing.T, clk *fakeclock.Clock, ch <-chan error, check func(error)) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		select {
		case err := <-ch:
			check(err)
			return
		default:
			if time.Now().After(deadline) {
				t.Fatal("timed out driving the fake clock")
			}
			clk.Advance(500 * time.Millisecond)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestDispatchBestMoveEvents(t *testing.T) {
	proc := fakeengine.Scripted()
	handler := newRecordingHandler()
	eng := New(&fakeengine.Launcher{Process: proc}, fakeclock.New(time.Now()), testOptions())
	if err := eng.Start(handler); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer eng.Close()

	proc.Emit("bestmove e2e4")
	if got := handler.next(t); got != "bestmove e2e4" {
		t.Errorf("event = %q, want %q", got, "bestmove e2e4")
	}

	proc.Emit("bestmove g1f3 ponder b8c6")
	if got := handler.next(t); got != "ponder g1f3 b8c6" {
		t.Errorf("event = %q, want %q", got, "ponder g1f3 b8c6")
	}

	// "bestmove (none)" is a recognized no-op, not a move.
	proc.Emit("bestmove (none)")
	proc.Emit("bestmove d2d4")
	if got := handler.next(t); got != "bestmove d2d4" {
		t.Errorf("event after bestmove (none) = %q, want %q", got, "bestmove d2d4")
	}
}

func TestDispatchSearchInfo(t *testing.T) {
	proc := fakeengine.Scripted()
	handler := newRecordingHandler()
	eng := New(&fakeengine.Launcher{Process: proc}, fakeclock.New(time.Now()), testOptions())
	if err := eng.Start(handler); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer eng.Close()

	proc.Emit("info depth 12 score cp -35 nps 240000 pv e7e5 g1f3")

	select {
	case info := <-handler.infos:
		if info.Depth == nil || *info.Depth != 12 {
			t.Errorf("Depth = %v, want 12", info.Depth)
		}
		if info.ScoreCP == nil || *info.ScoreCP != -35 {
			t.Errorf("ScoreCP = %v, want -35", info.ScoreCP)
		}
		if strings.Join(info.PV, " ") != "e7e5 g1f3" {
			t.Errorf("PV = %v", info.PV)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search info")
	}
}

// A protocol line split across two pipe reads must still come out as one
// event.
func TestSplitLineAcrossReads(t *testing.T) {
	proc := fakeengine.Scripted()
	handler := newRecordingHandler()
	eng := New(&fakeengine.Launcher{Process: proc}, fakeclock.New(time.Now()), testOptions())
	if err := eng.Start(handler); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer eng.Close()

	proc.EmitRaw("bestmove e2")
	proc.EmitRaw("e4\n")

	if got := handler.next(t); got != "bestmove e2e4" {
		t.Errorf("event = %q, want reassembled %q", got, "bestmove e2e4")
	}
}

func TestCloseQuitsEngine(t *testing.T) {
	proc := fakeengine.Scripted()
	eng := New(&fakeengine.Launcher{Process: proc}, fakeclock.New(time.Now()), testOptions())
	if err := eng.Start(newRecordingHandler()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cmds := proc.Commands()
	if cmds[len(cmds)-1] != "quit" {
		t.Errorf("last command = %q, want quit", cmds[len(cmds)-1])
	}
}

// A dead pipe is a transient fault: the reader flags the engine
// unavailable and keeps retrying instead of terminating.
func TestReadFaultMarksUnavailable(t *testing.T) {
	proc := fakeengine.Scripted()
	eng := New(&fakeengine.Launcher{Process: proc}, realclock.New(), testOptions())
	if err := eng.Start(newRecordingHandler()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	proc.CloseOutput()

	deadline := time.Now().Add(2 * time.Second)
	for eng.Available() {
		if time.Now().After(deadline) {
			t.Fatal("engine still available after its output pipe died")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSendBeforeStart(t *testing.T) {
	eng := New(&fakeengine.Launcher{Process: fakeengine.Scripted()}, fakeclock.New(time.Now()), testOptions())
	// Must not panic; the failure is logged and swallowed.
	eng.Send("isready")

	if err := eng.ApplyOptions(testOptions()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("ApplyOptions before Start = %v, want ErrNotRunning", err)
	}
}

func TestSpawnFailure(t *testing.T) {
	launcher := &fakeengine.Launcher{SpawnErr: errors.New("no such binary")}
	eng := New(launcher, fakeclock.New(time.Now()), testOptions())

	if err := eng.Start(newRecordingHandler()); err == nil {
		t.Fatal("Start succeeded with a failing launcher")
	}
}
