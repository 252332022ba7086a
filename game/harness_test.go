package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	t     *testing.T
	c     *Coordinator
	bank  *MockQuestionBank
	sink  *MockResultSink
	sched *fakeScheduler
	clock time.Time
	peers map[string]*recordingPeer
	ids   int
}

func newHarness(t *testing.T, codes ...string) *harness {
	t.Helper()
	if len(codes) == 0 {
		codes = []string{"ABCDEF", "GHIJKL", "MNOPQR"}
	}

	h := &harness{
		t:     t,
		bank:  &MockQuestionBank{},
		sink:  &MockResultSink{},
		sched: &fakeScheduler{},
		clock: epoch,
		peers: map[string]*recordingPeer{},
	}
	h.c = NewCoordinator(Options{
		Bank:      h.bank,
		Sink:      h.sink,
		Scheduler: h.sched,
		Codes:     &fixedCodes{codes: codes},
		Now:       func() time.Time { return h.clock },
		NewId: func() string {
			h.ids++
			return fmt.Sprintf("id-%d", h.ids)
		},
		Spawn:    func(f func()) { f() },
		Defaults: DefaultSettings(),
		Logger:   zerolog.Nop(),
	})
	return h
}

func (h *harness) drain() {
	for {
		select {
		case ev := <-h.c.inbox:
			h.c.handle(ev)
		default:
			return
		}
	}
}

func (h *harness) connect(connID string) *recordingPeer {
	p := &recordingPeer{id: connID}
	h.peers[connID] = p
	h.c.handle(connected{peer: p})
	return p
}

func (h *harness) send(connID string, msg Inbound) {
	h.c.handle(received{connID: connID, msg: msg})
	h.drain()
}

func (h *harness) disconnect(connID string) {
	h.c.handle(disconnected{connID: connID})
	h.drain()
}

func (h *harness) fire(want time.Duration) {
	h.t.Helper()
	h.sched.fireNext(h.t, want)
	h.drain()
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func (h *harness) resetFrames() {
	for _, p := range h.peers {
		p.reset()
	}
}

func (h *harness) room(code string) *Room {
	h.t.Helper()
	room, ok := h.c.reg.get(code)
	require.True(h.t, ok, "room %s not live", code)
	return room
}

// lobby creates ABCDEF hosted by "ana" with "carlos" joined, frames cleared.
func (h *harness) lobby() (*recordingPeer, *recordingPeer) {
	h.t.Helper()
	ana := h.connect("ana")
	carlos := h.connect("carlos")
	h.send("ana", CreateRoom{DisplayName: "Ana", GameType: GameQuiz})
	h.send("carlos", JoinRoom{RoomCode: "abcdef", DisplayName: "Carlos"})
	h.resetFrames()
	return ana, carlos
}

// playing starts a match over questions in ABCDEF and clears frames.
func (h *harness) playing(questions []domain.Question) (*recordingPeer, *recordingPeer) {
	h.t.Helper()
	ana, carlos := h.lobby()
	h.bank.On("RandomQuestions", mock.Anything, DefaultSettings().TotalQuestions).Return(questions, nil).Once()
	h.send("ana", PlayerReady{IsReady: true})
	h.send("carlos", PlayerReady{IsReady: true})
	h.fire(2 * time.Second)
	require.Equal(h.t, StatusPlaying, h.room("ABCDEF").status)
	h.resetFrames()
	return ana, carlos
}

// assertInvariants checks the population and host invariants of every live room.
func (h *harness) assertInvariants() {
	h.t.Helper()
	for code, room := range h.c.reg.rooms {
		assert.NotEmpty(h.t, room.players, "room %s is empty", code)
		hosts := 0
		for _, p := range room.players {
			if p.isHost {
				hosts++
				assert.Equal(h.t, room.hostConnectionId, p.connectionId)
			}
		}
		assert.Equal(h.t, 1, hosts, "room %s", code)
	}
}

func sampleQuestions(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, domain.Question{
			Id:            fmt.Sprintf("q%d", i),
			Prompt:        fmt.Sprintf("question %d", i),
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: 1,
			Explanation:   fmt.Sprintf("because %d", i),
			Points:        10,
			Category:      "ecology",
		})
	}
	return questions
}
