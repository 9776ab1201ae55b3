package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joy095/bookmarathon/models/book_models"
	"github.com/joy095/bookmarathon/models/booking_models"
	"github.com/joy095/bookmarathon/models/user_models"
	"github.com/joy095/bookmarathon/routes"
	"github.com/joy095/bookmarathon/settlement"
	"github.com/joy095/bookmarathon/utils"

	"github.com/joy095/bookmarathon/clients/bookstore"
)

// stubStore fakes the upstream book-issue API. The mutex matters: batch
// updates and bulk approvals hit the store concurrently.
type stubStore struct {
	mu          sync.Mutex
	books       []book_models.Book
	users       []user_models.User
	bookings    []booking_models.Booking
	failUpdates map[string]error
	failApprove map[string]error

	updated  []settlement.UpdateOp
	approved []string
}

func (s *stubStore) CreateUser(_ context.Context, req user_models.CreateUserRequest) (*user_models.User, error) {
	user := user_models.User{ID: "u1", Name: req.Name, Phone: req.Phone, CreatedAt: time.Now()}
	s.users = append(s.users, user)
	return &user, nil
}

func (s *stubStore) ListUsers(context.Context) ([]user_models.User, error) {
	return s.users, nil
}

func (s *stubStore) ListBooks(context.Context) ([]book_models.Book, error) {
	return s.books, nil
}

func (s *stubStore) CreateBooking(_ context.Context, req booking_models.CreateBookingRequest) (*bookstore.CreateBookingResult, error) {
	return &bookstore.CreateBookingResult{Message: "booked"}, nil
}

func (s *stubStore) ListBookings(context.Context, string) ([]booking_models.Booking, error) {
	return s.bookings, nil
}

func (s *stubStore) ListAdminBookings(context.Context, string) ([]booking_models.Booking, error) {
	return s.bookings, nil
}

func (s *stubStore) UpdateBooking(_ context.Context, bookingID string, op settlement.UpdateOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failUpdates[bookingID]; ok {
		return err
	}
	s.updated = append(s.updated, op)
	return nil
}

func (s *stubStore) ApproveBooking(_ context.Context, bookingID string) (*booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failApprove[bookingID]; ok {
		return nil, err
	}
	s.approved = append(s.approved, bookingID)
	return &booking_models.Booking{ID: bookingID, Status: booking_models.StatusApproved}, nil
}

var _ bookstore.API = (*stubStore)(nil)

const adminCode = "marathon-admin"

func newRouter(store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	routes.RegisterCatalogRoutes(r, store)
	routes.RegisterUserRoutes(r, store)
	routes.RegisterBookingRoutes(r, store)
	routes.RegisterReturnRoutes(r, store)
	routes.RegisterVerifyRoutes(r, store, utils.HashAccessCode(adminCode))
	return r
}

func sessionToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(utils.GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(encoded)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func marathonBookings() []booking_models.Booking {
	return []booking_models.Booking{
		{
			ID:             "bk1",
			QuantityBooked: 5,
			Rate:           20,
			Book:           booking_models.BookRef{ID: "book1", Name: "Bhagavad Gita", Rate: 20},
			Status:         booking_models.StatusPending,
		},
		{
			ID:             "bk2",
			QuantityBooked: 4,
			Rate:           0,
			Book:           booking_models.BookRef{ID: "book2", Name: "Sri Isopanisad", Rate: 50},
			Status:         booking_models.StatusPending,
		},
	}
}

func TestGetBooks(t *testing.T) {
	store := &stubStore{books: []book_models.Book{{ID: "book1", Name: "Bhagavad Gita", Rate: 50}}}
	r := newRouter(store)

	w := doJSON(t, r, http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bhagavad Gita")
}

func TestCreateBooking(t *testing.T) {
	store := &stubStore{books: []book_models.Book{
		{ID: "book1", Name: "Bhagavad Gita", Rate: 50},
		{ID: "book2", Name: "Sri Isopanisad", Rate: 20},
	}}
	r := newRouter(store)
	token := sessionToken(t)

	t.Run("RequiresToken", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/bookings", "", gin.H{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("RejectsEmptySelection", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/bookings", token, gin.H{
			"user":  gin.H{"name": "Gopal", "phone": "999"},
			"books": []gin.H{},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RejectsUnknownBook", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/bookings", token, gin.H{
			"user":  gin.H{"name": "Gopal", "phone": "999"},
			"books": []gin.H{{"bookId": "nope", "quantity": 1}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("BooksAndComputesTotals", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/bookings", token, gin.H{
			"user":  gin.H{"name": "Gopal", "phone": "999"},
			"books": []gin.H{{"bookId": "book1", "quantity": 2}, {"bookId": "book2", "quantity": 3}},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var res struct {
			UserID      string  `json:"userId"`
			TotalBooks  int     `json:"totalBooks"`
			TotalAmount float64 `json:"totalAmount"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "u1", res.UserID)
		assert.Equal(t, 5, res.TotalBooks)
		assert.Equal(t, 160.0, res.TotalAmount)
	})
}

func TestGetReturnsViewModel(t *testing.T) {
	store := &stubStore{bookings: marathonBookings()}
	r := newRouter(store)

	w := doJSON(t, r, http.MethodGet, "/api/returns?userId=u1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Data        []map[string]interface{} `json:"data"`
		TotalSold   int                      `json:"totalSold"`
		TotalAmount float64                  `json:"totalAmount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Data, 2)
	assert.Equal(t, 9, res.TotalSold)
	// bk1: 5 sold at 20, bk2: 4 sold at the book's fallback rate 50.
	assert.Equal(t, 300.0, res.TotalAmount)
}

func TestSubmitReturns(t *testing.T) {
	token := sessionToken(t)

	t.Run("RejectsOutOfRangeAdjustment", func(t *testing.T) {
		store := &stubStore{bookings: marathonBookings()}
		r := newRouter(store)

		w := doJSON(t, r, http.MethodPost, "/api/returns", token, gin.H{
			"userId":  "u1",
			"returns": gin.H{"bk1": 6},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, store.updated)
	})

	t.Run("RejectsOtherUsersSettlement", func(t *testing.T) {
		store := &stubStore{bookings: marathonBookings()}
		r := newRouter(store)

		w := doJSON(t, r, http.MethodPost, "/api/returns", token, gin.H{
			"userId":  "someone-else",
			"returns": gin.H{"bk1": 1},
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, store.updated)
	})

	t.Run("AppliesSettlementBatch", func(t *testing.T) {
		store := &stubStore{bookings: marathonBookings()}
		r := newRouter(store)

		w := doJSON(t, r, http.MethodPost, "/api/returns", token, gin.H{
			"userId":  "u1",
			"returns": gin.H{"bk1": 2},
		})
		require.Equal(t, http.StatusOK, w.Code)

		require.Len(t, store.updated, 1)
		assert.Equal(t, settlement.UpdateOp{BookingID: "bk1", QuantityReturned: 2, TotalPrice: 60}, store.updated[0])
	})

	t.Run("ReportsPartialFailure", func(t *testing.T) {
		store := &stubStore{
			bookings:    marathonBookings(),
			failUpdates: map[string]error{"bk2": errors.New("upstream returned 500")},
		}
		r := newRouter(store)

		w := doJSON(t, r, http.MethodPost, "/api/returns", token, gin.H{
			"userId":  "u1",
			"returns": gin.H{"bk1": 1, "bk2": 1},
		})
		require.Equal(t, http.StatusMultiStatus, w.Code)

		var res struct {
			Batch settlement.BatchResult `json:"batch"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, []string{"bk1"}, res.Batch.Applied)
		require.Len(t, res.Batch.Failed, 1)
		assert.Equal(t, "bk2", res.Batch.Failed[0].BookingID)
	})
}

func TestAdminApproval(t *testing.T) {
	t.Run("RequiresAccessCode", func(t *testing.T) {
		store := &stubStore{bookings: marathonBookings()}
		r := newRouter(store)

		w := doJSON(t, r, http.MethodPost, "/api/admin/bookings/g1/approve-all", "", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("ApproveAllReportsPartialFailure", func(t *testing.T) {
		store := &stubStore{
			bookings:    marathonBookings(),
			failApprove: map[string]error{"bk2": errors.New("approval failed")},
		}
		r := newRouter(store)

		req, err := http.NewRequest(http.MethodPost, "/api/admin/bookings/g1/approve-all", nil)
		require.NoError(t, err)
		req.Header.Set("X-Admin-Access-Code", adminCode)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusMultiStatus, w.Code)
		assert.Equal(t, []string{"bk1"}, store.approved)
		assert.Contains(t, w.Body.String(), "bk2")
	})

	t.Run("ApproveOneIsIdempotent", func(t *testing.T) {
		store := &stubStore{bookings: marathonBookings()}
		r := newRouter(store)

		for i := 0; i < 2; i++ {
			req, err := http.NewRequest(http.MethodPost, "/api/admin/bookings/bk1/approve", nil)
			require.NoError(t, err)
			req.Header.Set("X-Admin-Access-Code", adminCode)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
		}
		assert.Equal(t, []string{"bk1"}, store.approved)
	})
}
