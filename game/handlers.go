package game

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tekvyy/keyless-golf/crypto"
)

var (
	ErrRoomNotFoundStr    = "room-not-found"
	ErrInvalidRequestStr  = "invalid-request-format"
	ErrJoinRejectedStr    = "join-rejected"
	ErrPlayerNotFoundStr  = "player-not-found"
	ErrScoreRejectedStr   = "not-your-turn"
	ErrStartRejectedStr   = "not-enough-players"
	ErrAdvanceRejectedStr = "game-not-in-progress"
	ErrUpdateRejectedStr  = "update-rejected"
	ErrMissingTokenStr    = "missing-room-token"
	ErrInvalidTokenStr    = "invalid-room-token"
)

// RoomHandler is the HTTP façade over the coordinator. Every endpoint answers
// with the {success, data?, error?} envelope; business-rule failures become
// 4xx, never 5xx.
type RoomHandler struct {
	coordinator   *Coordinator
	tokens        *crypto.TokenManager
	requireTokens bool
}

func NewRoomHandler(coordinator *Coordinator, tokens *crypto.TokenManager, requireTokens bool) *RoomHandler {
	return &RoomHandler{
		coordinator:   coordinator,
		tokens:        tokens,
		requireTokens: requireTokens,
	}
}

func (h *RoomHandler) Register(router gin.IRouter) {
	rooms := router.Group("/api/rooms")

	rooms.GET("", h.ListRoomsHandler)
	rooms.POST("", h.CreateRoomHandler)
	rooms.GET("/:roomId", h.GetRoomHandler)
	rooms.GET("/:roomId/winner", h.WinnerHandler)
	rooms.GET("/:roomId/events", h.RoomEventsHandler)
	rooms.POST("/:roomId/join", h.JoinRoomHandler)

	guarded := rooms.Group("", h.RequireRoomToken())
	guarded.POST("/:roomId/leave", h.LeaveRoomHandler)
	guarded.POST("/:roomId/score", h.RecordScoreHandler)
	guarded.POST("/:roomId/start", h.StartGameHandler)
	guarded.POST("/:roomId/next-turn", h.AdvanceTurnHandler)
	guarded.POST("/:roomId/reset", h.ResetGameHandler)
	guarded.PUT("/:roomId", h.UpdateRoomHandler)
	guarded.PUT("/:roomId/players/:playerId", h.UpdatePlayerHandler)
}

func respondOK(ctx *gin.Context, code int, data any) {
	ctx.JSON(code, gin.H{"success": true, "data": data})
}

func respondError(ctx *gin.Context, code int, msg string) {
	ctx.AbortWithStatusJSON(code, gin.H{"success": false, "error": msg})
}

// RequireRoomToken verifies the capability token issued at create/join time and
// checks it was minted for the room being manipulated. The middleware is a
// no-op unless token enforcement was switched on; the open demo contract is
// that any caller may drive any room.
func (h *RoomHandler) RequireRoomToken() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !h.requireTokens {
			ctx.Next()
			return
		}

		raw := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if raw == "" {
			respondError(ctx, http.StatusUnauthorized, ErrMissingTokenStr)
			return
		}

		playerID, roomID, err := h.tokens.Verify(raw)
		if err != nil || roomID != ctx.Param("roomId") {
			respondError(ctx, http.StatusUnauthorized, ErrInvalidTokenStr)
			return
		}

		ctx.Set("playerId", playerID)
		ctx.Next()
	}
}

// roomFailure maps a false coordinator result onto 404 for an unknown room or
// the operation-specific 4xx otherwise. The coordinator itself does not
// distinguish the two; the façade owns the more specific messages.
func (h *RoomHandler) roomFailure(ctx *gin.Context, roomID, opError string) {
	if _, ok := h.coordinator.GetRoom(roomID); !ok {
		respondError(ctx, http.StatusNotFound, ErrRoomNotFoundStr)
		return
	}
	respondError(ctx, http.StatusConflict, opError)
}

func (h *RoomHandler) ListRoomsHandler(ctx *gin.Context) {
	respondOK(ctx, http.StatusOK, h.coordinator.ListRooms())
}

func (h *RoomHandler) GetRoomHandler(ctx *gin.Context) {
	room, ok := h.coordinator.GetRoom(ctx.Param("roomId"))
	if !ok {
		respondError(ctx, http.StatusNotFound, ErrRoomNotFoundStr)
		return
	}
	respondOK(ctx, http.StatusOK, room)
}

func (h *RoomHandler) CreateRoomHandler(ctx *gin.Context) {
	var params CreateRoomParams
	if err := ctx.ShouldBindJSON(&params); err != nil {
		respondError(ctx, http.StatusBadRequest, ErrInvalidRequestStr)
		return
	}

	room, err := h.coordinator.CreateRoom(params)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMaxPlayers), errors.Is(err, ErrInvalidShotCount):
			respondError(ctx, http.StatusBadRequest, err.Error())
		default:
			respondError(ctx, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.issueRoomToken(ctx, params.HostID, room.ID)
	respondOK(ctx, http.StatusCreated, room)
}

func (h *RoomHandler) JoinRoomHandler(ctx *gin.Context) {
	roomID := ctx.Param("roomId")

	var join JoinParams
	if err := ctx.ShouldBindJSON(&join); err != nil || join.PlayerID == "" {
		respondError(ctx, http.StatusBadRequest, ErrInvalidRequestStr)
		return
	}

	room, ok := h.coordinator.AddPlayer(roomID, join)
	if !ok {
		h.roomFailure(ctx, roomID, ErrJoinRejectedStr)
		return
	}

	h.issueRoomToken(ctx, join.PlayerID, room.ID)
	respondOK(ctx, http.StatusOK, room)
}

func (h *RoomHandler) LeaveRoomHandler(ctx *gin.Context) {
	roomID := ctx.Param("roomId")

	var body struct {
		PlayerID string `json:"playerId"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil || body.PlayerID == "" {
		respondError(ctx, http.StatusBadRequest, ErrInvalidRequestStr)
		return
	}

	room, ok := h.coordinator.RemovePlayer(roomID, body.PlayerID)
	if !ok {
		h.roomFailure(ctx, roomID, ErrPlayerNotFoundStr)
		return
	}
	if room == nil {
		// last player out, room deleted
		respondOK(ctx, http.StatusOK, nil)
		return
	}
	respondOK(ctx, http.StatusOK, room)
}

func (h *RoomHandler) RecordScoreHandler(ctx *gin.Context) {
	roomID := ctx.Param("roomId")

	var body struct {
		PlayerID string `json:"playerId"`
		Score    int    `json:"score"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil || body.PlayerID == "" {
		respondError(ctx, http.StatusBadRequest, ErrInvalidRequestStr)
		return
	}

	room, ok := h.coordinator.RecordScore(roomID, body.PlayerID, body.Score)
	if !ok {
		h.roomFailure(ctx, roomID, ErrScoreRejectedStr)
		return
	}
	respondOK(ctx, http.StatusOK, room)
}

func (h *RoomHandler) StartGameHandler(ctx *gin.Context) {
	roomID := ctx.Param("roomId")

	room, ok := h.coordinator.StartGame(roomID)
	if !ok {
		h.roomFailure(ctx, roomID, ErrStartRejectedStr)
		return
	}
	respondOK(ctx, http.StatusOK, room)
}

func (h *RoomHandler) AdvanceTurnHandler(ctx *gin.Context) {
	roomID := ctx.Param("roomId")

	room, ok := h.coordinator.AdvanceTurn(roomID)
	if !ok {
		h.roomFailure(ctx, roomID, ErrAdvanceRejectedStr)
		return
	}
	respondOK(ctx, http.StatusOK, room)
}

func (h *RoomHandler) ResetGameHandler(ctx *gin.Context) {
	roomID := ctx.Param("roomId")

	room, ok := h.coordinator.ResetGame(roomID)
	if !ok {
		respondError(ctx, http.StatusNotFound, ErrRoomNotFoundStr)
		return
	}
	respondOK(ctx, http.StatusOK, room)
}

func (h *RoomHandler) WinnerHandler(ctx *gin.Context) {
	winner, ok := h.coordinator.Winner(ctx.Param("roomId"))
	if !ok {
		respondError(ctx, http.StatusNotFound, ErrRoomNotFoundStr)
		return
	}
	respondOK(ctx, http.StatusOK, winner)
}

func (h *RoomHandler) UpdateRoomHandler(ctx *gin.Context) {
	roomID := ctx.Param("roomId")

	var patch RoomPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		respondError(ctx, http.StatusBadRequest, ErrInvalidRequestStr)
		return
	}

	room, ok := h.coordinator.UpdateRoom(roomID, patch)
	if !ok {
		h.roomFailure(ctx, roomID, ErrUpdateRejectedStr)
		return
	}
	respondOK(ctx, http.StatusOK, room)
}

func (h *RoomHandler) UpdatePlayerHandler(ctx *gin.Context) {
	roomID := ctx.Param("roomId")
	playerID := ctx.Param("playerId")

	var patch PlayerPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		respondError(ctx, http.StatusBadRequest, ErrInvalidRequestStr)
		return
	}

	room, ok := h.coordinator.UpdatePlayer(roomID, playerID, patch)
	if !ok {
		h.roomFailure(ctx, roomID, ErrPlayerNotFoundStr)
		return
	}
	respondOK(ctx, http.StatusOK, room)
}

// issueRoomToken puts a signed capability token for the player on the reply.
// Best effort: the room is already created/joined, so a signing failure only
// costs the caller the header.
func (h *RoomHandler) issueRoomToken(ctx *gin.Context, playerID, roomID string) {
	if h.tokens == nil {
		return
	}
	token, err := h.tokens.Generate(playerID, roomID, time.Now())
	if err != nil {
		return
	}
	ctx.Header("X-Room-Token", token)
}
