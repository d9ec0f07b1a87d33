package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/david3010/game_shop/internal/models"
)

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/games", map[string]any{
		"title": "Chess",
		"price": 10.0,
		"stock": 5,
	})
	require.NoError(t, env.G.CreateGame(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var game models.Game
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &game))
	require.Equal(t, "Chess", game.Title)
	require.Equal(t, 10.0, game.Price)
	require.Equal(t, uint(5), game.Stock)
	require.Empty(t, game.Description)
}

func TestCreateGameValidation(t *testing.T) {
	env := newTestEnv(t)

	// missing title
	_, c := env.doJSONRequest(http.MethodPost, "/api/games", map[string]any{"price": 10.0})
	requireHTTPError(t, env.G.CreateGame(c), http.StatusBadRequest)

	// missing price
	_, c2 := env.doJSONRequest(http.MethodPost, "/api/games", map[string]any{"title": "Chess"})
	requireHTTPError(t, env.G.CreateGame(c2), http.StatusBadRequest)

	// negative price
	_, c3 := env.doJSONRequest(http.MethodPost, "/api/games", map[string]any{"title": "Chess", "price": -1.0})
	requireHTTPError(t, env.G.CreateGame(c3), http.StatusBadRequest)
}

func TestGetGame(t *testing.T) {
	env := newTestEnv(t)
	game := env.createGame(t, "Chess", 10, 5)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/games/1", nil)
	setID(c, game.ID)
	require.NoError(t, env.G.GetGame(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Game
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, game.ID, got.ID)
	require.Equal(t, "Chess", got.Title)

	_, c2 := env.doJSONRequest(http.MethodGet, "/api/games/999", nil)
	setID(c2, 999)
	requireHTTPError(t, env.G.GetGame(c2), http.StatusNotFound)
}

func TestGetGamesPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 15; i++ {
		env.createGame(t, "Game", 1, 1)
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/games?page=2&size=10", nil)
	require.NoError(t, env.G.GetGames(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Game  `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 5)
	require.Equal(t, float64(15), resp.Meta["total"])
	require.Equal(t, float64(2), resp.Meta["total_pages"])
	require.Equal(t, true, resp.Meta["has_prev"])
	require.Equal(t, false, resp.Meta["has_next"])
}

func TestUpdateGame(t *testing.T) {
	env := newTestEnv(t)
	game := env.createGame(t, "Chess", 10, 5)

	rec, c := env.doJSONRequest(http.MethodPut, "/api/games/1", map[string]any{"stock": 42})
	setID(c, game.ID)
	require.NoError(t, env.G.UpdateGame(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Game
	require.NoError(t, env.DB.First(&updated, game.ID).Error)
	require.Equal(t, uint(42), updated.Stock)
	// all other fields unchanged
	require.Equal(t, "Chess", updated.Title)
	require.Equal(t, 10.0, updated.Price)
	require.Equal(t, game.Description, updated.Description)

	_, c2 := env.doJSONRequest(http.MethodPut, "/api/games/999", map[string]any{"stock": 1})
	setID(c2, 999)
	requireHTTPError(t, env.G.UpdateGame(c2), http.StatusNotFound)
}

func TestDeleteGame(t *testing.T) {
	env := newTestEnv(t)
	game := env.createGame(t, "Chess", 10, 5)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/games/1", nil)
	setID(c, game.ID)
	require.NoError(t, env.G.DeleteGame(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Game{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestDeleteGameReferencedByOrder(t *testing.T) {
	env := newTestEnv(t)
	game := env.createGame(t, "Chess", 10, 5)
	user := env.createUser(t, "alice", false)

	order := models.Order{UserID: user.ID, Total: 10, Status: models.OrderStatusPending, CreatedAt: 1}
	require.NoError(t, env.DB.Create(&order).Error)
	item := models.OrderItem{OrderID: order.ID, GameID: game.ID, Quantity: 1, UnitPrice: 10}
	require.NoError(t, env.DB.Create(&item).Error)

	_, c := env.doJSONRequest(http.MethodDelete, "/api/games/1", nil)
	setID(c, game.ID)
	requireHTTPError(t, env.G.DeleteGame(c), http.StatusConflict)

	var count int64
	require.NoError(t, env.DB.Model(&models.Game{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
