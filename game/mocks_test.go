package game

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

// --- QuestionBank ---

type MockQuestionBank struct {
	mock.Mock
}

func (m *MockQuestionBank) RandomQuestions(ctx context.Context, count int) ([]domain.Question, error) {
	args := m.Called(ctx, count)
	questions, _ := args.Get(0).([]domain.Question)
	return questions, args.Error(1)
}

// --- ResultSink ---

type MockResultSink struct {
	mock.Mock
}

func (m *MockResultSink) RecordMatch(ctx context.Context, result domain.MatchResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// --- Connection ---

type MockConnection struct {
	mock.Mock
}

func (m *MockConnection) Close(errCode string) {
	m.Called(errCode)
}

func (m *MockConnection) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockConnection) Read() ([]byte, error) {
	args := m.Called()
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockConnection) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- Dispatcher ---

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Connect(ctx context.Context, peer Peer, userId string) error {
	args := m.Called(ctx, peer, userId)
	return args.Error(0)
}

func (m *MockDispatcher) Deliver(ctx context.Context, connID string, msg Inbound) error {
	args := m.Called(ctx, connID, msg)
	return args.Error(0)
}

func (m *MockDispatcher) Reject(ctx context.Context, connID string) error {
	args := m.Called(ctx, connID)
	return args.Error(0)
}

func (m *MockDispatcher) Disconnect(ctx context.Context, connID string) error {
	args := m.Called(ctx, connID)
	return args.Error(0)
}

// --- Attacher ---

type MockAttacher struct {
	mock.Mock
}

func (m *MockAttacher) Attach(socket Connection, userId string) string {
	args := m.Called(socket, userId)
	return args.String(0)
}

// --- RoomDirectory ---

type MockRoomDirectory struct {
	mock.Mock
}

func (m *MockRoomDirectory) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	args := m.Called(ctx)
	rooms, _ := args.Get(0).([]RoomSummary)
	return rooms, args.Error(1)
}

func (m *MockRoomDirectory) RoomSnapshot(ctx context.Context, code string) (RoomView, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(RoomView), args.Error(1)
}

// --- Leaderboard ---

type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]domain.LeaderboardEntry)
	return entries, args.Error(1)
}

// --- PlayerTokens ---

type MockPlayerTokens struct {
	mock.Mock
}

func (m *MockPlayerTokens) Issue(playerId string, now time.Time) (string, error) {
	args := m.Called(playerId, now)
	return args.String(0), args.Error(1)
}

func (m *MockPlayerTokens) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func (m *MockPlayerTokens) MaxAge() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

// --- Scheduler ---

type scheduledTimer struct {
	d    time.Duration
	fire func()
}

// fakeScheduler keeps timers until a test fires them, oldest first.
type fakeScheduler struct {
	pending []scheduledTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fire func()) {
	s.pending = append(s.pending, scheduledTimer{d: d, fire: fire})
}

func (s *fakeScheduler) fireNext(t *testing.T, want time.Duration) {
	t.Helper()
	require.NotEmpty(t, s.pending, "no timer scheduled")
	next := s.pending[0]
	s.pending = s.pending[1:]
	assert.Equal(t, want, next.d)
	next.fire()
}

// --- RoomCodeGenerator ---

type fixedCodes struct {
	codes []string
	next  int
}

func (f *fixedCodes) Generate() string {
	code := f.codes[f.next%len(f.codes)]
	f.next++
	return code
}

// --- Peer ---

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type recordingPeer struct {
	id     string
	frames []frame
	closed bool
}

func (p *recordingPeer) ID() string { return p.id }

func (p *recordingPeer) Send(data []byte) error {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	p.frames = append(p.frames, f)
	return nil
}

func (p *recordingPeer) Close() { p.closed = true }

func (p *recordingPeer) types() []string {
	types := make([]string, 0, len(p.frames))
	for _, f := range p.frames {
		types = append(types, f.Type)
	}
	return types
}

func (p *recordingPeer) reset() { p.frames = nil }

// last decodes the most recent frame with the given tag into out.
func (p *recordingPeer) last(t *testing.T, tag string, out any) {
	t.Helper()
	for i := len(p.frames) - 1; i >= 0; i-- {
		if p.frames[i].Type == tag {
			require.NoError(t, json.Unmarshal(p.frames[i].Data, out))
			return
		}
	}
	t.Fatalf("no %q frame in %v", tag, p.types())
}

func (p *recordingPeer) count(tag string) int {
	n := 0
	for _, f := range p.frames {
		if f.Type == tag {
			n++
		}
	}
	return n
}
