package game

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

func allowAll(*http.Request) bool { return true }

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(h.Identify)
	router.GET("/ws", h.WebsocketHandler)
	router.GET("/rooms", h.ListRoomsHandler)
	router.GET("/rooms/:code", h.GetRoomHandler)
	router.GET("/leaderboard", h.LeaderboardHandler)
	router.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("userId")) })
	return router
}

func TestRoomHandlers(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		setupMocks   func(*MockRoomDirectory)
		path         string
		expectedCode int
		expectedBody string
	}{
		{
			name: "list rooms",
			setupMocks: func(d *MockRoomDirectory) {
				d.On("ListRooms", mock.Anything).Return([]RoomSummary{{Code: "ABCDEF", PlayerCount: 2, MaxPlayers: 6, Status: StatusWaiting, GameType: GameQuiz}}, nil)
			},
			path:         "/rooms",
			expectedCode: http.StatusOK,
			expectedBody: `[{"code":"ABCDEF","playerCount":2,"maxPlayers":6,"status":"waiting","gameType":"quiz"}]`,
		},
		{
			name: "list rooms while stopping",
			setupMocks: func(d *MockRoomDirectory) {
				d.On("ListRooms", mock.Anything).Return(nil, ErrCoordinatorStopped)
			},
			path:         "/rooms",
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"error":"rooms-unavailable"}`,
		},
		{
			name: "room snapshot",
			setupMocks: func(d *MockRoomDirectory) {
				d.On("RoomSnapshot", mock.Anything, "abcdef").Return(RoomView{Code: "ABCDEF", Status: StatusPlaying, Players: []PlayerView{}}, nil)
			},
			path:         "/rooms/abcdef",
			expectedCode: http.StatusOK,
			expectedBody: `{"code":"ABCDEF","hostId":"","gameType":"","status":"playing","players":[],"settings":{"maxPlayers":0,"timePerQuestionSeconds":0,"totalQuestions":0},"createdAt":0}`,
		},
		{
			name: "unknown room",
			setupMocks: func(d *MockRoomDirectory) {
				d.On("RoomSnapshot", mock.Anything, "ZZZZZZ").Return(RoomView{}, ErrRoomNotFound)
			},
			path:         "/rooms/ZZZZZZ",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"room-not-found"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := &MockRoomDirectory{}
			tc.setupMocks(dir)
			h := NewHandler(&MockAttacher{}, dir, nil, nil, allowAll, zerolog.Nop())

			res := httptest.NewRecorder()
			newTestRouter(h).ServeHTTP(res, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.expectedCode, res.Code)
			assert.JSONEq(t, tc.expectedBody, res.Body.String())
			dir.AssertExpectations(t)
		})
	}
}

func TestLeaderboardHandler(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		disabled     bool
		setupMocks   func(*MockLeaderboard)
		path         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "redis not configured",
			disabled:     true,
			setupMocks:   func(l *MockLeaderboard) {},
			path:         "/leaderboard",
			expectedCode: http.StatusNotFound,
			expectedBody: "leaderboard-disabled",
		},
		{
			name: "default limit",
			setupMocks: func(l *MockLeaderboard) {
				l.On("Top", mock.Anything, 10).Return([]domain.LeaderboardEntry{{Name: "Ana", Score: 120}}, nil)
			},
			path:         "/leaderboard",
			expectedCode: http.StatusOK,
			expectedBody: `[{"name":"Ana","score":120}]`,
		},
		{
			name: "explicit limit",
			setupMocks: func(l *MockLeaderboard) {
				l.On("Top", mock.Anything, 3).Return([]domain.LeaderboardEntry{}, nil)
			},
			path:         "/leaderboard?limit=3",
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "limit not a number",
			setupMocks:   func(l *MockLeaderboard) {},
			path:         "/leaderboard?limit=ten",
			expectedCode: http.StatusBadRequest,
			expectedBody: "invalid-limit",
		},
		{
			name:         "limit too large",
			setupMocks:   func(l *MockLeaderboard) {},
			path:         "/leaderboard?limit=101",
			expectedCode: http.StatusBadRequest,
			expectedBody: "invalid-limit",
		},
		{
			name: "redis error",
			setupMocks: func(l *MockLeaderboard) {
				l.On("Top", mock.Anything, 10).Return(nil, errors.New("connection refused"))
			},
			path:         "/leaderboard",
			expectedCode: http.StatusInternalServerError,
			expectedBody: "leaderboard-unavailable",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			board := &MockLeaderboard{}
			tc.setupMocks(board)

			var lb Leaderboard = board
			if tc.disabled {
				lb = nil
			}
			h := NewHandler(&MockAttacher{}, &MockRoomDirectory{}, lb, nil, allowAll, zerolog.Nop())

			res := httptest.NewRecorder()
			newTestRouter(h).ServeHTTP(res, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.expectedCode, res.Code)
			assert.Contains(t, res.Body.String(), tc.expectedBody)
			board.AssertExpectations(t)
		})
	}
}

func TestIdentify(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		noTokens    bool
		setupMocks  func(*MockPlayerTokens)
		cookie      string
		expected    string
		issuedToken string
	}{
		{
			name: "valid token keeps its player",
			setupMocks: func(v *MockPlayerTokens) {
				v.On("Verify", "good").Return("user-42", nil)
			},
			cookie:   "good",
			expected: "user-42",
		},
		{
			name: "expired token is replaced by a guest",
			setupMocks: func(v *MockPlayerTokens) {
				v.On("Verify", "old").Return("", domain.ErrExpiredToken)
				v.On("Issue", "guest-1", now).Return("fresh", nil)
				v.On("MaxAge").Return(time.Hour)
			},
			cookie:      "old",
			expected:    "guest-1",
			issuedToken: "fresh",
		},
		{
			name: "first visit gets a guest",
			setupMocks: func(v *MockPlayerTokens) {
				v.On("Issue", "guest-1", now).Return("fresh", nil)
				v.On("MaxAge").Return(time.Hour)
			},
			expected:    "guest-1",
			issuedToken: "fresh",
		},
		{
			name: "issue failure stays anonymous",
			setupMocks: func(v *MockPlayerTokens) {
				v.On("Issue", "guest-1", now).Return("", domain.UnexpectedTokenGenerationError)
			},
			expected: "",
		},
		{
			name:       "jwt disabled",
			noTokens:   true,
			setupMocks: func(v *MockPlayerTokens) {},
			cookie:     "good",
			expected:   "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tokens := &MockPlayerTokens{}
			tc.setupMocks(tokens)

			var pt PlayerTokens = tokens
			if tc.noTokens {
				pt = nil
			}
			h := NewHandler(&MockAttacher{}, &MockRoomDirectory{}, nil, pt, allowAll, zerolog.Nop())
			h.newId = func() string { return "guest-1" }
			h.now = func() time.Time { return now }

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tc.cookie})
			}
			res := httptest.NewRecorder()
			newTestRouter(h).ServeHTTP(res, req)

			assert.Equal(t, http.StatusOK, res.Code)
			assert.Equal(t, tc.expected, res.Body.String())
			tokens.AssertExpectations(t)

			cookies := res.Result().Cookies()
			if tc.issuedToken == "" {
				assert.Empty(t, cookies)
				return
			}
			require.Len(t, cookies, 1)
			assert.Equal(t, "token", cookies[0].Name)
			assert.Equal(t, tc.issuedToken, cookies[0].Value)
			assert.Equal(t, 3600, cookies[0].MaxAge)
			assert.True(t, cookies[0].HttpOnly)
			assert.True(t, cookies[0].Secure)
		})
	}
}

func TestWebsocketHandler(t *testing.T) {
	t.Parallel()

	t.Run("attaches and echoes text frames", func(t *testing.T) {
		t.Parallel()
		attacher := &MockAttacher{}
		attacher.On("Attach", mock.Anything, "").Run(func(args mock.Arguments) {
			socket := args.Get(0).(Connection)
			go func() {
				data, err := socket.Read()
				if err != nil {
					return
				}
				socket.Write(data)
			}()
		}).Return("conn-1").Once()

		h := NewHandler(attacher, &MockRoomDirectory{}, nil, nil, allowAll, zerolog.Nop())
		server := httptest.NewServer(newTestRouter(h))
		defer server.Close()

		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"leave-room"}`)))
		kind, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, kind)
		assert.Equal(t, `{"type":"leave-room"}`, string(msg))
		attacher.AssertExpectations(t)
	})

	t.Run("guest cookie rides on the upgrade", func(t *testing.T) {
		t.Parallel()
		tokens := &MockPlayerTokens{}
		tokens.On("Issue", "guest-1", mock.Anything).Return("fresh", nil)
		tokens.On("MaxAge").Return(time.Hour)
		attacher := &MockAttacher{}
		attacher.On("Attach", mock.Anything, "guest-1").Return("conn-1").Once()

		h := NewHandler(attacher, &MockRoomDirectory{}, nil, tokens, allowAll, zerolog.Nop())
		h.newId = func() string { return "guest-1" }
		server := httptest.NewServer(newTestRouter(h))
		defer server.Close()

		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
		conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.Len(t, res.Cookies(), 1)
		assert.Equal(t, "fresh", res.Cookies()[0].Value)
		attacher.AssertExpectations(t)
	})

	t.Run("origin rejected", func(t *testing.T) {
		t.Parallel()
		attacher := &MockAttacher{}
		h := NewHandler(attacher, &MockRoomDirectory{}, nil, nil, func(*http.Request) bool { return false }, zerolog.Nop())
		server := httptest.NewServer(newTestRouter(h))
		defer server.Close()

		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
		_, res, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://evil.example"}})
		require.Error(t, err)
		require.NotNil(t, res)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		attacher.AssertNotCalled(t, "Attach", mock.Anything, mock.Anything)
	})
}
