package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"domainlease.backend/internal/infrastructure/repositories"
	"domainlease.backend/internal/interfaces/http/handlers"
	"domainlease.backend/internal/interfaces/http/middleware"
	"domainlease.backend/internal/usecases"
	"domainlease.backend/pkg/jwt"
)

type listingRig struct {
	db     *gorm.DB
	router *gin.Engine
	jwt    *jwt.JWTService
}

func newListingRig(t *testing.T) *listingRig {
	t.Helper()
	db := newTestDB(t)
	jwtService := jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)

	listingUsecase := usecases.NewListingUsecase(
		repositories.NewListingRepository(db),
		repositories.NewDomainRepository(db),
		repositories.NewInteractionRepository(db),
	)
	h := handlers.NewListingHandler(listingUsecase)

	r := gin.New()
	public := r.Group("/api/v1", middleware.OptionalAuthMiddleware(jwtService))
	public.GET("/listings", h.Search)
	public.GET("/listings/:id", h.Get)

	authed := r.Group("/api/v1", middleware.AuthMiddleware(jwtService))
	authed.POST("/listings", h.Publish)
	authed.DELETE("/listings/:id", h.Cancel)

	return &listingRig{db: db, router: r, jwt: jwtService}
}

func (rig *listingRig) seedUser(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	require.NoError(t, rig.db.Exec(
		`INSERT INTO users (id, email, role, created_at, updated_at) VALUES (?, ?, 'BOTH', ?, ?)`,
		id.String(), email, time.Now(), time.Now(),
	).Error)
	pair, err := rig.jwt.GenerateTokenPair(id, email, "BOTH")
	require.NoError(t, err)
	return id, pair.AccessToken
}

func (rig *listingRig) seedDomain(t *testing.T, owner uuid.UUID, name, status string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, rig.db.Exec(
		`INSERT INTO domains (id, name, suffix, type, owner_id, verification_status, created_at, updated_at)
		 VALUES (?, ?, 'io', 'WEB2', ?, ?, ?, ?)`,
		id.String(), name, owner.String(), status, time.Now(), time.Now(),
	).Error)
	return id
}

func TestListingHandler_PublishAndGet(t *testing.T) {
	rig := newListingRig(t)
	owner, ownerToken := rig.seedUser(t, "owner@example.io")
	domainID := rig.seedDomain(t, owner, "coffeeshop.io", "VERIFIED")

	w := doJSON(t, rig.router, http.MethodPost, "/api/v1/listings", ownerToken, gin.H{
		"domainId":     domainID.String(),
		"priceAmount":  120.0,
		"durationDays": 30,
		"tags":         []string{"coffee", "retail"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		LeaseType string `json:"leaseType"`
		Currency  string `json:"priceCurrency"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "ACTIVE", created.Status)
	require.Equal(t, "FIXED", created.LeaseType)
	require.Equal(t, "USD", created.Currency)

	// The domain slot is taken while the listing is live.
	w = doJSON(t, rig.router, http.MethodPost, "/api/v1/listings", ownerToken, gin.H{
		"domainId":     domainID.String(),
		"priceAmount":  99.0,
		"durationDays": 60,
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// Anonymous read works and counts the view.
	w = doJSON(t, rig.router, http.MethodGet, "/api/v1/listings/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got struct {
		ViewCount int64 `json:"viewCount"`
		Domain    *struct {
			Name string `json:"name"`
		} `json:"domain"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, int64(1), got.ViewCount)
	require.NotNil(t, got.Domain)
	require.Equal(t, "coffeeshop.io", got.Domain.Name)

	w = doJSON(t, rig.router, http.MethodGet, "/api/v1/listings/not-a-uuid", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, rig.router, http.MethodGet, "/api/v1/listings/"+uuid.NewString(), "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListingHandler_PublishGuards(t *testing.T) {
	rig := newListingRig(t)
	owner, ownerToken := rig.seedUser(t, "owner@example.io")
	_, strangerToken := rig.seedUser(t, "stranger@example.io")
	pending := rig.seedDomain(t, owner, "pending.io", "PENDING")
	verified := rig.seedDomain(t, owner, "verified.io", "VERIFIED")

	// Unverified domains cannot be listed.
	w := doJSON(t, rig.router, http.MethodPost, "/api/v1/listings", ownerToken, gin.H{
		"domainId":     pending.String(),
		"priceAmount":  50.0,
		"durationDays": 30,
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// Only the domain owner may publish.
	w = doJSON(t, rig.router, http.MethodPost, "/api/v1/listings", strangerToken, gin.H{
		"domainId":     verified.String(),
		"priceAmount":  50.0,
		"durationDays": 30,
	})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	// Unknown currency is rejected at binding time.
	w = doJSON(t, rig.router, http.MethodPost, "/api/v1/listings", ownerToken, gin.H{
		"domainId":      verified.String(),
		"priceAmount":   50.0,
		"durationDays":  30,
		"priceCurrency": "DOGE",
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = doJSON(t, rig.router, http.MethodPost, "/api/v1/listings", "", gin.H{
		"domainId":     verified.String(),
		"priceAmount":  50.0,
		"durationDays": 30,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListingHandler_CancelAndRelist(t *testing.T) {
	rig := newListingRig(t)
	owner, ownerToken := rig.seedUser(t, "owner@example.io")
	_, strangerToken := rig.seedUser(t, "stranger@example.io")
	domainID := rig.seedDomain(t, owner, "relist.io", "VERIFIED")

	w := doJSON(t, rig.router, http.MethodPost, "/api/v1/listings", ownerToken, gin.H{
		"domainId":     domainID.String(),
		"priceAmount":  75.0,
		"durationDays": 90,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, rig.router, http.MethodDelete, "/api/v1/listings/"+created.ID, strangerToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	w = doJSON(t, rig.router, http.MethodDelete, "/api/v1/listings/"+created.ID, ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The cancelled listing stays readable.
	w = doJSON(t, rig.router, http.MethodGet, "/api/v1/listings/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cancelled struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
	require.Equal(t, "CANCELLED", cancelled.Status)

	// Cancelling frees the domain slot for a fresh listing.
	w = doJSON(t, rig.router, http.MethodPost, "/api/v1/listings", ownerToken, gin.H{
		"domainId":     domainID.String(),
		"priceAmount":  85.0,
		"durationDays": 90,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestListingHandler_Search(t *testing.T) {
	rig := newListingRig(t)
	owner, ownerToken := rig.seedUser(t, "owner@example.io")

	for _, d := range []struct {
		name  string
		price float64
	}{
		{"alpha.io", 50},
		{"beta.io", 150},
		{"gamma.io", 250},
	} {
		domainID := rig.seedDomain(t, owner, d.name, "VERIFIED")
		w := doJSON(t, rig.router, http.MethodPost, "/api/v1/listings", ownerToken, gin.H{
			"domainId":     domainID.String(),
			"priceAmount":  d.price,
			"durationDays": 30,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(t, rig.router, http.MethodGet, "/api/v1/listings?minPrice=100&sortBy=price", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page struct {
		Data       []json.RawMessage `json:"data"`
		Pagination struct {
			TotalCount int64 `json:"totalCount"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data, 2)
	require.Equal(t, int64(2), page.Pagination.TotalCount)

	// Sort field names outside the whitelist are rejected.
	w = doJSON(t, rig.router, http.MethodGet, "/api/v1/listings?sortBy=password_hash", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}
