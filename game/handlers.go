package game

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	tokenCookie             = "token"
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type Handler struct {
	attacher Attacher
	rooms    RoomDirectory
	board    Leaderboard
	tokens   PlayerTokens
	upgrader websocket.Upgrader
	newId    func() string
	now      func() time.Time
	log      zerolog.Logger
}

// NewHandler builds the HTTP surface. board and tokens may be nil when
// Redis or JWT are not configured.
func NewHandler(attacher Attacher, rooms RoomDirectory, board Leaderboard, tokens PlayerTokens, checkOrigin func(*http.Request) bool, logger zerolog.Logger) *Handler {
	return &Handler{
		attacher: attacher,
		rooms:    rooms,
		board:    board,
		tokens:   tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		newId: uuid.NewString,
		now:   time.Now,
		log:   logger.With().Str("component", "http").Logger(),
	}
}

// Identify attaches the player id from a valid token cookie. Browsers
// without one, or with an expired or foreign token, get a fresh guest id and
// cookie so their results stay linked across matches.
func (h *Handler) Identify(ctx *gin.Context) {
	if h.tokens == nil {
		ctx.Next()
		return
	}

	if token, err := ctx.Cookie(tokenCookie); err == nil && token != "" {
		userId, err := h.tokens.Verify(token)
		if err == nil {
			ctx.Set("userId", userId)
			ctx.Next()
			return
		}
		h.log.Debug().Err(err).Str("ip", ctx.ClientIP()).Msg("replacing invalid token")
	}

	userId := h.newId()
	token, err := h.tokens.Issue(userId, h.now())
	if err != nil {
		h.log.Error().Err(err).Msg("issue guest token")
		ctx.Next()
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(tokenCookie, token, int(h.tokens.MaxAge().Seconds()), "/", "", true, true)
	ctx.Set("userId", userId)
	ctx.Next()
}

func (h *Handler) WebsocketHandler(ctx *gin.Context) {
	// the upgrade writes its own response, so a freshly issued cookie has to ride along
	var header http.Header
	if cookies := ctx.Writer.Header().Values("Set-Cookie"); len(cookies) > 0 {
		header = http.Header{"Set-Cookie": cookies}
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, header)
	if err != nil {
		h.log.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	connID := h.attacher.Attach(NewWebsocketConnection(conn), ctx.GetString("userId"))
	h.log.Debug().Str("conn", connID).Str("ip", ctx.ClientIP()).Msg("websocket attached")
}

func (h *Handler) ListRoomsHandler(ctx *gin.Context) {
	rooms, err := h.rooms.ListRooms(ctx.Request.Context())
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "rooms-unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, rooms)
}

func (h *Handler) GetRoomHandler(ctx *gin.Context) {
	room, err := h.rooms.RoomSnapshot(ctx.Request.Context(), ctx.Param("code"))
	if errors.Is(err, ErrRoomNotFound) {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
		return
	}
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "rooms-unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, room)
}

func (h *Handler) LeaderboardHandler(ctx *gin.Context) {
	if h.board == nil {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "leaderboard-disabled"})
		return
	}

	limit := defaultLeaderboardLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLeaderboardLimit {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-limit"})
			return
		}
		limit = n
	}

	entries, err := h.board.Top(ctx.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("leaderboard query failed")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "leaderboard-unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, entries)
}
