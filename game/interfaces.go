package game

import (
	"context"
	"time"

	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

// Connection is the transport underneath one client.
type Connection interface {
	Close(errCode string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// Peer is what the coordinator writes outbound frames to.
type Peer interface {
	ID() string
	Send(data []byte) error
	Close()
}

// Dispatcher is the coordinator as seen from the connection side.
type Dispatcher interface {
	Connect(ctx context.Context, peer Peer, userId string) error
	Deliver(ctx context.Context, connID string, msg Inbound) error
	Reject(ctx context.Context, connID string) error
	Disconnect(ctx context.Context, connID string) error
}

type QuestionBank interface {
	RandomQuestions(ctx context.Context, count int) ([]domain.Question, error)
}

type ResultSink interface {
	RecordMatch(ctx context.Context, result domain.MatchResult) error
}

type RoomCodeGenerator interface {
	Generate() string
}

// Scheduler runs fire once after d. Fired callbacks must re-enter the event loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fire func())
}

type RoomDirectory interface {
	ListRooms(ctx context.Context) ([]RoomSummary, error)
	RoomSnapshot(ctx context.Context, code string) (RoomView, error)
}

type Leaderboard interface {
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// PlayerTokens issues and checks the signed guest identity kept in the token cookie.
type PlayerTokens interface {
	Issue(playerId string, now time.Time) (string, error)
	Verify(token string) (string, error)
	MaxAge() time.Duration
}

type Attacher interface {
	Attach(socket Connection, userId string) string
}
