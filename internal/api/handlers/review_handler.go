package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/zatekoja/vetclinicdiscovery/internal/application/services"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/providers"
)

const (
	reviewRateWindow  = time.Hour
	reviewDedupWindow = 24 * time.Hour
)

// ReviewService defines the review operations used by the handler
type ReviewService interface {
	Submit(ctx context.Context, clinicID string, review *entities.Review) (*entities.RatingSummary, error)
	List(ctx context.Context, clinicID string) (*services.ClinicReviews, error)
}

// ReviewHandler handles review submissions and listings
type ReviewHandler struct {
	service ReviewService
	cache   providers.CacheProvider
	limiter *clientLimiter
	deduper *localDeduper
}

// NewReviewHandler creates a new review handler. perHour caps submissions per
// client IP; cache may be nil, in which case duplicates are tracked in memory.
func NewReviewHandler(service ReviewService, cache providers.CacheProvider, perHour int) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		cache:   cache,
		limiter: newClientLimiter(perHour, reviewRateWindow),
		deduper: newLocalDeduper(),
	}
}

type reviewRequest struct {
	Rating       int    `json:"rating"`
	PriceRating  *int   `json:"price_rating"`
	Text         string `json:"text"`
	ReviewerName string `json:"reviewer_name"`
}

// SubmitReview handles POST /api/clinics/{id}/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")

	var payload reviewRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	ip := clientIP(r)
	if allowed, retryAfter := h.limiter.allow(ip); !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	dupKey := "review:dup:" + reviewFingerprint(clinicID, payload, ip)
	if h.isDuplicate(r.Context(), dupKey) {
		respondWithJSON(w, http.StatusAccepted, map[string]string{
			"status": "duplicate_ignored",
		})
		return
	}

	review := &entities.Review{
		Rating:       payload.Rating,
		PriceRating:  payload.PriceRating,
		Text:         payload.Text,
		ReviewerName: payload.ReviewerName,
	}
	summary, err := h.service.Submit(r.Context(), clinicID, review)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.markSeen(r.Context(), dupKey)

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":            true,
		"review_id":          review.ID,
		"new_average_rating": summary.AverageRating,
		"review_count":       summary.ReviewCount,
	})
}

// ListReviews handles GET /api/clinics/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.List(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) isDuplicate(ctx context.Context, key string) bool {
	if h.cache == nil {
		return h.deduper.seen(key)
	}
	exists, err := h.cache.Exists(ctx, key)
	return err == nil && exists
}

func (h *ReviewHandler) markSeen(ctx context.Context, key string) {
	if h.cache == nil {
		h.deduper.mark(key, reviewDedupWindow)
		return
	}
	_ = h.cache.Set(ctx, key, []byte("1"), int(reviewDedupWindow.Seconds()))
}

// clientLimiter keeps one token bucket per client key
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func newClientLimiter(perWindow int, window time.Duration) *clientLimiter {
	if perWindow <= 0 {
		perWindow = 1
	}
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(window / time.Duration(perWindow)),
		burst:    perWindow,
	}
}

func (l *clientLimiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	res := lim.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return false, delay
	}
	return true, 0
}

type localDeduper struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newLocalDeduper() *localDeduper {
	return &localDeduper{
		entries: make(map[string]time.Time),
	}
}

func (d *localDeduper) seen(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	expiresAt, ok := d.entries[key]
	if ok && time.Now().After(expiresAt) {
		delete(d.entries, key)
		return false
	}
	return ok
}

func (d *localDeduper) mark(key string, window time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[key] = time.Now().Add(window)
}

func reviewFingerprint(clinicID string, payload reviewRequest, ip string) string {
	normalized := []string{
		clinicID,
		strconv.Itoa(payload.Rating),
		normalizeText(payload.Text),
		normalizeText(payload.ReviewerName),
		ip,
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

func normalizeText(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}
