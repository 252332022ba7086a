package game

// RoomView is the snapshot clients receive; it is built on the loop and never shared.
type RoomView struct {
	Code      string       `json:"code"`
	HostId    string       `json:"hostId"`
	GameType  GameType     `json:"gameType"`
	Status    RoomStatus   `json:"status"`
	Players   []PlayerView `json:"players"`
	Settings  Settings     `json:"settings"`
	CreatedAt int64        `json:"createdAt"`
}

type PlayerView struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	IsReady bool   `json:"isReady"`
	IsHost  bool   `json:"isHost"`
}

type RoomSummary struct {
	Code        string     `json:"code"`
	PlayerCount int        `json:"playerCount"`
	MaxPlayers  int        `json:"maxPlayers"`
	Status      RoomStatus `json:"status"`
	GameType    GameType   `json:"gameType"`
}

type MatchView struct {
	TotalQuestions         int   `json:"totalQuestions"`
	TimePerQuestionSeconds int   `json:"timePerQuestionSeconds"`
	StartedAt              int64 `json:"startedAt"`
}

// PlayerDetail is the per-player answer review sent with the final results.
type PlayerDetail struct {
	PlayerId       string   `json:"playerId"`
	Name           string   `json:"name"`
	Score          int      `json:"score"`
	CorrectAnswers int      `json:"correctAnswers"`
	Answers        []Answer `json:"answers"`
}

func (p *Player) view() PlayerView {
	return PlayerView{
		Id:      p.id,
		Name:    p.name,
		Score:   p.score,
		IsReady: p.isReady,
		IsHost:  p.isHost,
	}
}

func (r *Room) view() RoomView {
	players := make([]PlayerView, 0, len(r.players))
	hostId := ""
	for _, p := range r.players {
		players = append(players, p.view())
		if p.isHost {
			hostId = p.id
		}
	}
	return RoomView{
		Code:      r.code,
		HostId:    hostId,
		GameType:  r.gameType,
		Status:    r.status,
		Players:   players,
		Settings:  r.settings,
		CreatedAt: r.createdAt.UnixMilli(),
	}
}

func (r *Room) summary() RoomSummary {
	return RoomSummary{
		Code:        r.code,
		PlayerCount: len(r.players),
		MaxPlayers:  r.settings.MaxPlayers,
		Status:      r.status,
		GameType:    r.gameType,
	}
}

func (m *MatchState) view(s Settings) MatchView {
	return MatchView{
		TotalQuestions:         len(m.questions),
		TimePerQuestionSeconds: s.TimePerQuestionSeconds,
		StartedAt:              m.matchStartedAt.UnixMilli(),
	}
}

func playerDetails(players []*Player) []PlayerDetail {
	details := make([]PlayerDetail, 0, len(players))
	for _, p := range players {
		answers := make([]Answer, len(p.answers))
		copy(answers, p.answers)
		details = append(details, PlayerDetail{
			PlayerId:       p.id,
			Name:           p.name,
			Score:          p.score,
			CorrectAnswers: p.correctAnswers(),
			Answers:        answers,
		})
	}
	return details
}
