package game

import "time"

// maxCodeAttempts bounds collision retries; 36^6 codes make a second attempt rare already.
const maxCodeAttempts = 64

// registry owns every live room and the connection -> room membership.
// It is only touched from the coordinator loop.
type registry struct {
	rooms       map[string]*Room
	memberships map[string]string
	codes       RoomCodeGenerator
	newId       func() string
	now         func() time.Time
}

func newRegistry(codes RoomCodeGenerator, newId func() string, now func() time.Time) *registry {
	return &registry{
		rooms:       map[string]*Room{},
		memberships: map[string]string{},
		codes:       codes,
		newId:       newId,
		now:         now,
	}
}

func (g *registry) newPlayer(connID, userId, name string) *Player {
	return &Player{
		id:           g.newId(),
		userId:       userId,
		connectionId: connID,
		name:         name,
	}
}

func (g *registry) freeCode() (string, bool) {
	for range maxCodeAttempts {
		code := NormalizeCode(g.codes.Generate())
		if _, taken := g.rooms[code]; !taken && code != "" {
			return code, true
		}
	}
	return "", false
}

// createRoom makes connID the sole player and host of a fresh waiting room.
func (g *registry) createRoom(connID, userId, name string, gameType GameType, settings Settings) (*Room, bool) {
	code, ok := g.freeCode()
	if !ok {
		return nil, false
	}

	host := g.newPlayer(connID, userId, name)
	host.isHost = true

	room := &Room{
		code:             code,
		hostConnectionId: connID,
		gameType:         gameType,
		status:           StatusWaiting,
		settings:         settings,
		createdAt:        g.now(),
		players:          []*Player{host},
	}
	g.rooms[code] = room
	g.memberships[connID] = code
	return room, true
}

// admits reports whether a new player could join code right now, checking
// existence, capacity and status in that order. Nothing is changed.
func (g *registry) admits(code string) (*Room, error) {
	room, ok := g.rooms[NormalizeCode(code)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if len(room.players) >= room.settings.MaxPlayers {
		return nil, ErrRoomFull
	}
	if room.status != StatusWaiting || room.pendingStart {
		return nil, ErrMatchInProgress
	}
	return room, nil
}

func (g *registry) joinRoom(connID, userId, code, name string) (*Room, *Player, error) {
	room, err := g.admits(code)
	if err != nil {
		return nil, nil, err
	}

	p := g.newPlayer(connID, userId, name)
	room.players = append(room.players, p)
	g.memberships[connID] = room.code
	return room, p, nil
}

// leaveRoom removes connID from its room. The room is deleted together with
// its last player; otherwise a departing host is replaced by the earliest
// joined remaining player.
func (g *registry) leaveRoom(connID string) (room *Room, left *Player, deleted bool, ok bool) {
	room = g.roomOf(connID)
	if room == nil {
		return nil, nil, false, false
	}
	delete(g.memberships, connID)

	left, idx := room.playerByConn(connID)
	if left == nil {
		return room, nil, false, false
	}
	room.players = append(room.players[:idx], room.players[idx+1:]...)

	if len(room.players) == 0 {
		delete(g.rooms, room.code)
		room.match = nil
		return room, left, true, true
	}

	if room.hostConnectionId == connID {
		next := room.players[0]
		next.isHost = true
		room.hostConnectionId = next.connectionId
	}
	return room, left, false, true
}

func (g *registry) roomOf(connID string) *Room {
	code, ok := g.memberships[connID]
	if !ok {
		return nil
	}
	return g.rooms[code]
}

func (g *registry) get(code string) (*Room, bool) {
	room, ok := g.rooms[NormalizeCode(code)]
	return room, ok
}

// isLive reports whether room is still the registered room for its code.
// A deleted room may have its code reused, so identity is compared.
func (g *registry) isLive(room *Room) bool {
	return room != nil && g.rooms[room.code] == room
}
