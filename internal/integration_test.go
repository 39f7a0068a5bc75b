package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"school-resource-backend/config"
	"school-resource-backend/internal/api"
	"school-resource-backend/internal/auth"
	"school-resource-backend/internal/model"
	"school-resource-backend/internal/store"
)

// memSessions is an in-memory stand-in for the Redis session store.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]*auth.Session)}
}

func (s *memSessions) Create(_ context.Context, token string, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = &auth.Session{UserID: u.ID, Username: u.Username, Role: u.Role}
	return nil
}

func (s *memSessions) Get(_ context.Context, token string) (*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	return sess, nil
}

func (s *memSessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

var _ api.SessionManager = (*memSessions)(nil)

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	sessions *memSessions
}

// newTestEnv spins up a full router over an in-memory SQLite database.
// Each test gets its own named database so state cannot leak between tests.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(
		&model.User{},
		&model.ResourceRequest{},
		&model.Lab{},
		&model.LabBooking{},
		&model.InventoryItem{},
		&model.Book{},
		&model.BorrowRecord{},
	))

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 1

	sessions := newMemSessions()
	router := api.NewRouter(store.NewGormStore(testDB), sessions, cfg)
	return &testEnv{router: router, db: testDB, sessions: sessions}
}

// seedUser inserts a user directly and registers a session token for it.
// The token is the username prefixed with "tok-", which keeps request
// helpers readable.
func (e *testEnv) seedUser(t *testing.T, username string, role model.Role) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	u := model.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    username,
		LastName:     "test",
		Email:        username + "@school.test",
		Role:         role,
	}
	require.NoError(t, e.db.Create(&u).Error)
	require.NoError(t, e.sessions.Create(context.Background(), "tok-"+username, &u))
	return &u
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func (e *testEnv) bookAvailable(t *testing.T, id uint) int {
	t.Helper()
	var book model.Book
	require.NoError(t, e.db.First(&book, id).Error)
	return book.AvailableCopies
}

// TestBorrowLifecycle walks a book through checkout and return and verifies
// the available count at each step.
func TestBorrowLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "librarian", model.RoleLibrarian)

	w := env.do(t, http.MethodPost, "/api/library/books", "tok-librarian", gin.H{
		"title":        "The Go Programming Language",
		"author":       "Donovan & Kernighan",
		"isbn":         "978-0134190440",
		"category":     "science",
		"total_copies": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	book := decode[model.Book](t, w)
	assert.Equal(t, 3, book.TotalCopies)
	assert.Equal(t, 3, book.AvailableCopies)

	w = env.do(t, http.MethodPost, "/api/library/borrows", "tok-librarian", gin.H{
		"book":          book.ID,
		"borrower_name": "Ana Marin",
		"borrower_type": "student",
		"due_date":      "2026-09-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[model.BorrowRecord](t, w)
	assert.False(t, rec.Returned)
	assert.Nil(t, rec.ReturnedDate)
	assert.Equal(t, book.ID, rec.Book.ID)
	assert.Equal(t, 2, env.bookAvailable(t, book.ID))

	w = env.do(t, http.MethodGet, "/api/library/borrows/active", "tok-librarian", nil)
	require.Equal(t, http.StatusOK, w.Code)
	active := decode[[]model.BorrowRecord](t, w)
	require.Len(t, active, 1)
	assert.Equal(t, rec.ID, active[0].ID)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/library/borrows/%d/return", rec.ID), "tok-librarian", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	returned := decode[model.BorrowRecord](t, w)
	assert.True(t, returned.Returned)
	assert.NotNil(t, returned.ReturnedDate)
	assert.Equal(t, 3, env.bookAvailable(t, book.ID))

	w = env.do(t, http.MethodGet, "/api/library/borrows/active", "tok-librarian", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.BorrowRecord](t, w), 0)
}

// TestBorrowExhaustion checks that a borrow against a book with no copies
// left is rejected and the count does not go negative.
func TestBorrowExhaustion(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "librarian", model.RoleLibrarian)

	book := model.Book{Title: "Rare Atlas", Author: "N. N.", ISBN: "r-1", Category: "reference", TotalCopies: 1, AvailableCopies: 1}
	require.NoError(t, env.db.Create(&book).Error)

	borrow := gin.H{"book": book.ID, "borrower_name": "first", "due_date": "2026-09-15"}
	w := env.do(t, http.MethodPost, "/api/library/borrows", "tok-librarian", borrow)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	borrow["borrower_name"] = "second"
	w = env.do(t, http.MethodPost, "/api/library/borrows", "tok-librarian", borrow)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "No available copies of this book", resp["error"])
	assert.Equal(t, 0, env.bookAvailable(t, book.ID))

	var count int64
	require.NoError(t, env.db.Model(&model.BorrowRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// TestBorrowUnknownBook expects a 404 rather than a dangling record.
func TestBorrowUnknownBook(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "librarian", model.RoleLibrarian)

	w := env.do(t, http.MethodPost, "/api/library/borrows", "tok-librarian", gin.H{
		"book": 999, "borrower_name": "ghost", "due_date": "2026-09-15",
	})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

// TestDoubleReturn pins down the current behavior: returning the same
// record twice increments the available count twice. Callers are expected
// not to replay returns.
func TestDoubleReturn(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "librarian", model.RoleLibrarian)

	book := model.Book{Title: "Twice", Author: "A.", ISBN: "d-1", Category: "general", TotalCopies: 2, AvailableCopies: 2}
	require.NoError(t, env.db.Create(&book).Error)

	w := env.do(t, http.MethodPost, "/api/library/borrows", "tok-librarian", gin.H{
		"book": book.ID, "borrower_name": "rep", "due_date": "2026-09-15",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	rec := decode[model.BorrowRecord](t, w)
	assert.Equal(t, 1, env.bookAvailable(t, book.ID))

	returnPath := fmt.Sprintf("/api/library/borrows/%d/return", rec.ID)
	w = env.do(t, http.MethodPost, returnPath, "tok-librarian", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.bookAvailable(t, book.ID))

	w = env.do(t, http.MethodPost, returnPath, "tok-librarian", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, env.bookAvailable(t, book.ID))
}

// TestRequestOwnerForcing verifies the requester recorded on a resource
// request is the authenticated caller, regardless of what the body claims.
func TestRequestOwnerForcing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", model.RoleTeacher)
	bob := env.seedUser(t, "bob", model.RoleTeacher)

	w := env.do(t, http.MethodPost, "/api/resources/requests", "tok-alice", gin.H{
		"resource_type": "projector",
		"resource_name": "Epson EB-X06",
		"quantity":      1,
		"teacher":       bob.ID,
		"status":        "fulfilled",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	req := decode[model.ResourceRequest](t, w)
	assert.Equal(t, alice.ID, req.TeacherID)
	assert.Equal(t, model.RequestPending, req.Status)
}

// TestBookingOwnerForcing does the same for lab bookings, and checks the
// lab must exist.
func TestBookingOwnerForcing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", model.RoleTeacher)

	w := env.do(t, http.MethodPost, "/api/labs/bookings", "tok-alice", gin.H{
		"lab": 42, "date": "2026-09-10", "start_time": "09:00", "end_time": "11:00",
	})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	lab := model.Lab{LabNumber: "LAB-1", Capacity: 30, IsAvailable: true}
	require.NoError(t, env.db.Create(&lab).Error)

	w = env.do(t, http.MethodPost, "/api/labs/bookings", "tok-alice", gin.H{
		"lab": lab.ID, "date": "2026-09-10", "start_time": "09:00", "end_time": "11:00",
		"teacher": 999,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode[model.LabBooking](t, w)
	assert.Equal(t, alice.ID, booking.TeacherID)
	assert.Equal(t, model.BookingPending, booking.Status)
}

// TestAdminGate verifies /api/admin routes reject everyone except admins
// and that the stats payload reflects seeded data.
func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", model.RoleTeacher)
	env.seedUser(t, "root", model.RoleAdmin)

	w := env.do(t, http.MethodGet, "/api/admin/stats", "tok-alice", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "Not authorized", resp["error"])

	w = env.do(t, http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	book := model.Book{Title: "B", Author: "A", ISBN: "s-1", Category: "general", TotalCopies: 4, AvailableCopies: 4}
	require.NoError(t, env.db.Create(&book).Error)
	item := model.InventoryItem{Name: "chalk", Category: "stationery", Quantity: 2, Threshold: 5, Department: "math"}
	require.NoError(t, env.db.Create(&item).Error)

	w = env.do(t, http.MethodGet, "/api/admin/stats", "tok-root", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decode[store.AdminStats](t, w)
	assert.EqualValues(t, 2, stats.Users.Total)
	assert.EqualValues(t, 1, stats.Users.ByRole["teacher"])
	assert.EqualValues(t, 1, stats.Users.ByRole["admin"])
	assert.EqualValues(t, 1, stats.Library.TotalBooks)
	assert.EqualValues(t, 4, stats.Library.TotalCopies)
	assert.EqualValues(t, 4, stats.Library.AvailableCopies)
	assert.EqualValues(t, 1, stats.Inventory.TotalItems)
	assert.EqualValues(t, 1, stats.Inventory.LowStock)
	assert.EqualValues(t, 2, stats.Inventory.TotalQuantity)
}

// TestAdminOnlyUserManagement verifies that creating and deleting accounts
// is limited to admins while reads stay open to any authenticated user.
func TestAdminOnlyUserManagement(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", model.RoleTeacher)
	env.seedUser(t, "root", model.RoleAdmin)

	newUser := gin.H{
		"username": "carol", "password": "secret123",
		"first_name": "Carol", "last_name": "K", "email": "carol@school.test",
		"role": "librarian",
	}
	w := env.do(t, http.MethodPost, "/api/users", "tok-alice", newUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/users", "tok-root", newUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.User](t, w)
	assert.Equal(t, model.RoleLibrarian, created.Role)
	assert.NotContains(t, w.Body.String(), "password")

	// Duplicate username is rejected before hitting the unique index.
	w = env.do(t, http.MethodPost, "/api/users", "tok-root", newUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/users?role=librarian", "tok-alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]model.User](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, "carol", listed[0].Username)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), "tok-alice", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), "tok-root", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

// TestLowStockBoundary checks the low-stock filter includes items exactly
// at their threshold.
func TestLowStockBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "keeper", model.RoleStorekeeper)

	items := []model.InventoryItem{
		{Name: "at-threshold", Category: "stationery", Quantity: 5, Threshold: 5, Department: "math"},
		{Name: "below", Category: "stationery", Quantity: 1, Threshold: 5, Department: "math"},
		{Name: "above", Category: "stationery", Quantity: 6, Threshold: 5, Department: "math"},
	}
	require.NoError(t, env.db.Create(&items).Error)

	w := env.do(t, http.MethodGet, "/api/store/low-stock", "tok-keeper", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	low := decode[[]model.InventoryItem](t, w)
	names := make([]string, 0, len(low))
	for _, it := range low {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"at-threshold", "below"}, names)
}

// TestRecentRequests verifies the recent view caps at ten entries, newest
// first.
func TestRecentRequests(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", model.RoleTeacher)

	for i := 0; i < 12; i++ {
		req := model.ResourceRequest{
			TeacherID:    alice.ID,
			ResourceType: "misc",
			ResourceName: fmt.Sprintf("item-%02d", i),
			Quantity:     1,
			Status:       model.RequestPending,
		}
		require.NoError(t, env.db.Create(&req).Error)
	}

	w := env.do(t, http.MethodGet, "/api/resources/requests/recent", "tok-alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	recent := decode[[]model.ResourceRequest](t, w)
	require.Len(t, recent, 10)
	assert.Equal(t, "item-11", recent[0].ResourceName)
	assert.Equal(t, "item-02", recent[9].ResourceName)
}

// TestLoginLogout exercises the credential flow end to end against the
// in-memory session store.
func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", model.RoleTeacher)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "nobody", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	loginResp := decode[map[string]json.RawMessage](t, w)
	var token string
	require.NoError(t, json.Unmarshal(loginResp["token"], &token))
	require.NotEmpty(t, token)

	w = env.do(t, http.MethodGet, "/api/auth/whoami", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[model.User](t, w)
	assert.Equal(t, "alice", me.Username)

	w = env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/auth/whoami", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestRoleChangeRequiresAdmin verifies a non-admin cannot edit roles, in
// particular not their own, while profile edits stay open and admins keep
// the ability.
func TestRoleChangeRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", model.RoleTeacher)
	env.seedUser(t, "root", model.RoleAdmin)

	alicePath := fmt.Sprintf("/api/users/%d", alice.ID)
	w := env.do(t, http.MethodPut, alicePath, "tok-alice", gin.H{"role": "admin"})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	var stored model.User
	require.NoError(t, env.db.First(&stored, alice.ID).Error)
	assert.Equal(t, model.RoleTeacher, stored.Role)

	w = env.do(t, http.MethodGet, "/api/admin/stats", "tok-alice", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, alicePath, "tok-alice", gin.H{"first_name": "Alicia"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Alicia", decode[model.User](t, w).FirstName)

	w = env.do(t, http.MethodPut, alicePath, "tok-root", gin.H{"role": "librarian"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.RoleLibrarian, decode[model.User](t, w).Role)
}

// TestBookingUpdateUnknownLab expects moving a booking to a lab that does
// not exist to fail with 404, same as creating one.
func TestBookingUpdateUnknownLab(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", model.RoleTeacher)

	lab := model.Lab{LabNumber: "LAB-1", Capacity: 30, IsAvailable: true}
	require.NoError(t, env.db.Create(&lab).Error)
	booking := model.LabBooking{
		LabID: lab.ID, TeacherID: alice.ID,
		Date: "2026-09-10", StartTime: "09:00", EndTime: "11:00",
		Status: model.BookingPending,
	}
	require.NoError(t, env.db.Create(&booking).Error)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/labs/bookings/%d", booking.ID), "tok-alice", gin.H{
		"lab": 999, "date": "2026-09-11", "start_time": "10:00", "end_time": "12:00",
	})
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "lab not found", resp["error"])

	var stored model.LabBooking
	require.NoError(t, env.db.First(&stored, booking.ID).Error)
	assert.Equal(t, lab.ID, stored.LabID)
	assert.Equal(t, "2026-09-10", stored.Date)
}

// TestLabUpdatePreservesAvailability checks a PUT without the availability
// flag leaves the stored value alone.
func TestLabUpdatePreservesAvailability(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "tech", model.RoleLabTech)

	lab := model.Lab{LabNumber: "LAB-9", Capacity: 12, IsAvailable: false}
	require.NoError(t, env.db.Create(&lab).Error)
	labPath := fmt.Sprintf("/api/labs/%d", lab.ID)

	w := env.do(t, http.MethodPut, labPath, "tok-tech", gin.H{
		"lab_number": "LAB-9", "capacity": 16,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.Lab](t, w)
	assert.Equal(t, 16, updated.Capacity)
	assert.False(t, updated.IsAvailable)

	w = env.do(t, http.MethodPut, labPath, "tok-tech", gin.H{
		"lab_number": "LAB-9", "capacity": 16, "is_available": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[model.Lab](t, w).IsAvailable)
}
