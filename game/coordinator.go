package game

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const inboxSize = 1024

type Timing struct {
	ReadyGrace    time.Duration
	Cooldown      time.Duration
	QuestionPause time.Duration
	BankTimeout   time.Duration
	SinkTimeout   time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		ReadyGrace:    2 * time.Second,
		Cooldown:      30 * time.Second,
		QuestionPause: 3 * time.Second,
		BankTimeout:   5 * time.Second,
		SinkTimeout:   10 * time.Second,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.ReadyGrace <= 0 {
		t.ReadyGrace = d.ReadyGrace
	}
	if t.Cooldown <= 0 {
		t.Cooldown = d.Cooldown
	}
	if t.QuestionPause <= 0 {
		t.QuestionPause = d.QuestionPause
	}
	if t.BankTimeout <= 0 {
		t.BankTimeout = d.BankTimeout
	}
	if t.SinkTimeout <= 0 {
		t.SinkTimeout = d.SinkTimeout
	}
	return t
}

// Options wires a Coordinator. Bank is required, everything else has a default.
type Options struct {
	Bank      QuestionBank
	Sink      ResultSink
	Scheduler Scheduler
	Codes     RoomCodeGenerator
	Now       func() time.Time
	NewId     func() string

	// Spawn runs blocking work (question bank, result sinks) off the loop.
	Spawn func(func())

	Timing   Timing
	Defaults Settings
	Logger   zerolog.Logger
}

type peerEntry struct {
	peer   Peer
	userId string
}

// Coordinator is the single event loop owning every room, player and match.
// All state below is only read or written from the goroutine running Run.
type Coordinator struct {
	bank      QuestionBank
	sink      ResultSink
	scheduler Scheduler
	now       func() time.Time
	newId     func() string
	spawn     func(func())
	timing    Timing
	defaults  Settings
	log       zerolog.Logger

	reg   *registry
	peers map[string]peerEntry

	ctx   context.Context
	inbox chan event
	done  chan struct{}
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.Scheduler == nil {
		opts.Scheduler = NewScheduler()
	}
	if opts.Codes == nil {
		opts.Codes = NewRoomCodes()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewId == nil {
		opts.NewId = uuid.NewString
	}
	if opts.Spawn == nil {
		opts.Spawn = func(f func()) { go f() }
	}

	return &Coordinator{
		bank:      opts.Bank,
		sink:      opts.Sink,
		scheduler: opts.Scheduler,
		now:       opts.Now,
		newId:     opts.NewId,
		spawn:     opts.Spawn,
		timing:    opts.Timing.withDefaults(),
		defaults:  opts.Defaults.WithDefaults(DefaultSettings()),
		log:       opts.Logger.With().Str("component", "coordinator").Logger(),
		reg:       newRegistry(opts.Codes, opts.NewId, opts.Now),
		peers:     map[string]peerEntry{},
		ctx:       context.Background(),
		inbox:     make(chan event, inboxSize),
		done:      make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled, then closes every peer.
func (c *Coordinator) Run(ctx context.Context) {
	c.ctx = ctx
	defer close(c.done)

	c.log.Info().Msg("coordinator started")
	for {
		select {
		case ev := <-c.inbox:
			c.handle(ev)
		case <-ctx.Done():
			for _, entry := range c.peers {
				entry.peer.Close()
			}
			c.log.Info().Int("rooms", len(c.reg.rooms)).Msg("coordinator stopped")
			return
		}
	}
}

func (c *Coordinator) post(ctx context.Context, ev event) error {
	select {
	case <-c.done:
		return ErrCoordinatorStopped
	default:
	}

	select {
	case c.inbox <- ev:
		return nil
	case <-c.done:
		return ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect registers a peer under its id. It belongs to no room until it creates or joins one.
func (c *Coordinator) Connect(ctx context.Context, peer Peer, userId string) error {
	return c.post(ctx, connected{peer: peer, userId: userId})
}

func (c *Coordinator) Deliver(ctx context.Context, connID string, msg Inbound) error {
	return c.post(ctx, received{connID: connID, msg: msg})
}

// Reject answers a frame that could not be decoded.
func (c *Coordinator) Reject(ctx context.Context, connID string) error {
	return c.post(ctx, invalidMessage{connID: connID})
}

// Disconnect is handled as a leave followed by forgetting the peer.
func (c *Coordinator) Disconnect(ctx context.Context, connID string) error {
	return c.post(ctx, disconnected{connID: connID})
}

func (c *Coordinator) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	reply := make(chan []RoomSummary, 1)
	if err := c.post(ctx, roomsQuery{reply: reply}); err != nil {
		return nil, err
	}
	select {
	case rooms := <-reply:
		return rooms, nil
	case <-c.done:
		return nil, ErrCoordinatorStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) RoomSnapshot(ctx context.Context, code string) (RoomView, error) {
	reply := make(chan roomQueryResult, 1)
	if err := c.post(ctx, roomQuery{code: code, reply: reply}); err != nil {
		return RoomView{}, err
	}
	select {
	case res := <-reply:
		if !res.found {
			return RoomView{}, ErrRoomNotFound
		}
		return res.view, nil
	case <-c.done:
		return RoomView{}, ErrCoordinatorStopped
	case <-ctx.Done():
		return RoomView{}, ctx.Err()
	}
}

func (c *Coordinator) handle(ev event) {
	switch e := ev.(type) {
	case connected:
		c.peers[e.peer.ID()] = peerEntry{peer: e.peer, userId: e.userId}
		c.log.Debug().Str("conn", e.peer.ID()).Msg("connected")
	case disconnected:
		c.leave(e.connID)
		delete(c.peers, e.connID)
		c.log.Debug().Str("conn", e.connID).Msg("disconnected")
	case received:
		c.dispatch(e.connID, e.msg)
	case invalidMessage:
		c.unicast(e.connID, ErrorMessage{Reason: ErrInvalidMessage})
	case timerFired:
		c.onTimer(e)
	case questionsLoaded:
		c.onQuestionsLoaded(e)
	case roomsQuery:
		e.reply <- c.roomSummaries()
	case roomQuery:
		room, ok := c.reg.get(e.code)
		if !ok {
			e.reply <- roomQueryResult{}
			return
		}
		e.reply <- roomQueryResult{view: room.view(), found: true}
	}
}

func (c *Coordinator) dispatch(connID string, msg Inbound) {
	if _, ok := c.peers[connID]; !ok {
		return
	}

	switch m := msg.(type) {
	case CreateRoom:
		c.createRoom(connID, m)
	case JoinRoom:
		c.joinRoom(connID, m)
	case LeaveRoom:
		c.leave(connID)
	case PlayerReady:
		c.setReady(connID, m.IsReady)
	case SubmitAnswer:
		c.submitAnswer(connID, m)
	case StartGame:
		c.hostStart(connID)
	case SendChat:
		c.chat(connID, m)
	}
}

func (c *Coordinator) roomSummaries() []RoomSummary {
	rooms := make([]RoomSummary, 0, len(c.reg.rooms))
	for _, room := range c.reg.rooms {
		rooms = append(rooms, room.summary())
	}
	slices.SortFunc(rooms, func(a, b RoomSummary) int {
		return strings.Compare(a.Code, b.Code)
	})
	return rooms
}

// schedule arms a timer whose firing re-enters the loop as ev.
func (c *Coordinator) schedule(d time.Duration, ev timerFired) {
	c.scheduler.AfterFunc(d, func() {
		if err := c.post(context.Background(), ev); err != nil {
			c.log.Debug().Err(err).Msg("timer dropped")
		}
	})
}

func (c *Coordinator) unicast(connID string, msg Outbound) {
	entry, ok := c.peers[connID]
	if !ok {
		c.log.Debug().Str("conn", connID).Msg("unicast to unknown connection")
		return
	}
	data, err := EncodeOutbound(msg)
	if err != nil {
		c.log.Error().Err(err).Msg("encode outbound")
		return
	}
	if err := entry.peer.Send(data); err != nil {
		c.log.Warn().Err(err).Str("conn", connID).Msg("send failed")
	}
}

// roomcast delivers msg to every player of a live room. Deleted rooms get nothing.
func (c *Coordinator) roomcast(room *Room, msg Outbound) {
	if !c.reg.isLive(room) {
		return
	}
	data, err := EncodeOutbound(msg)
	if err != nil {
		c.log.Error().Err(err).Msg("encode outbound")
		return
	}
	for _, p := range room.players {
		entry, ok := c.peers[p.connectionId]
		if !ok {
			continue
		}
		if err := entry.peer.Send(data); err != nil {
			c.log.Warn().Err(err).Str("room", room.code).Str("conn", p.connectionId).Msg("send failed")
		}
	}
}
