package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/david3010/game_shop/internal/hash"
	"github.com/david3010/game_shop/internal/middleware/auth"
	"github.com/david3010/game_shop/internal/models"
	"github.com/david3010/game_shop/internal/mykafka"
	"github.com/david3010/game_shop/internal/service/order"
)

var testSecret = []byte("test_secret")

type testEnv struct {
	E  *echo.Echo
	DB *gorm.DB
	A  *AuthHandler
	U  *UserHandler
	G  *GameHandler
	O  *OrderHandler
}

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Game{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := InitTestDB(t)
	prod := &mykafka.Producer{}

	return &testEnv{
		E:  echo.New(),
		DB: db,
		A:  &AuthHandler{DB: db, JWTSecret: testSecret, Producer: prod},
		U:  &UserHandler{DB: db, Producer: prod},
		G:  &GameHandler{DB: db, Producer: prod},
		O:  &OrderHandler{Svc: &order.Service{DB: db}, Producer: prod},
	}
}

func (env *testEnv) doJSONRequest(method, path string, payload any) (*httptest.ResponseRecorder, echo.Context) {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func actAs(c echo.Context, user models.User) {
	c.Set(auth.CtxUserIDKey, user.ID)
	c.Set(auth.CtxIsAdminKey, user.IsAdmin)
}

func setID(c echo.Context, id uint) {
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(id)))
}

func (env *testEnv) createUser(t *testing.T, username string, admin bool) models.User {
	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: pwHash,
		IsAdmin:      admin,
	}
	require.NoError(t, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) createGame(t *testing.T, title string, price float64, stock uint) models.Game {
	game := models.Game{Title: title, Price: price, Stock: stock}
	require.NoError(t, env.DB.Create(&game).Error)
	return game
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
