// Package gateway binds the search and review sessions to an HTTP JSON
// conversation surface.
//
// Routes:
//
//	GET  /health
//	POST /conversations/:id/commands/:command  → start | start-search | review-saved
//	POST /conversations/:id/messages           → free text {"text": "..."}
//	POST /conversations/:id/actions            → affordance {"action": "...", "ref": "..."}
//
// Events for the same conversation are handled one at a time.
package gateway

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "jobmate/jobsearch-bot/internal/errors"
	"jobmate/jobsearch-bot/internal/logging"
	"jobmate/jobsearch-bot/internal/session"
)

const (
	CommandStart       = "start"
	CommandStartSearch = "start-search"
	CommandReviewSaved = "review-saved"
)

// Handler holds shared dependencies.
type Handler struct {
	search  *session.Search
	review  *session.Review
	locker  *session.Locker
	logger  *logging.Logger
	version string
}

// NewHandler returns a configured Handler.
func NewHandler(search *session.Search, review *session.Review, logger *logging.Logger, version string) *Handler {
	return &Handler{
		search:  search,
		review:  review,
		locker:  session.NewLocker(),
		logger:  logger,
		version: version,
	}
}

// NewRouter builds a gin engine with every gateway route mounted.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(h.logger))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts all gateway routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.health)

	conv := r.Group("/conversations/:id")
	conv.POST("/commands/:command", h.command)
	conv.POST("/messages", h.message)
	conv.POST("/actions", h.action)
}

type messageRequest struct {
	Text string `json:"text" binding:"required"`
}

type actionRequest struct {
	Action session.Action `json:"action" binding:"required"`
	Ref    string         `json:"ref"`
}

type repliesResponse struct {
	Replies []session.Reply `json:"replies"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "jobsearch-bot",
		"version": h.version,
	})
}

func (h *Handler) command(c *gin.Context) {
	convID := c.Param("id")

	var step func(ctx context.Context) ([]session.Reply, error)
	switch c.Param("command") {
	case CommandStart:
		step = func(context.Context) ([]session.Reply, error) { return session.Greeting(), nil }
	case CommandStartSearch:
		step = func(ctx context.Context) ([]session.Reply, error) { return h.search.Start(ctx, convID) }
	case CommandReviewSaved:
		step = func(ctx context.Context) ([]session.Reply, error) { return h.review.Start(ctx, convID) }
	default:
		jsonError(c, "unknown command "+c.Param("command"), http.StatusNotFound)
		return
	}

	h.run(c, convID, step)
}

func (h *Handler) message(c *gin.Context) {
	convID := c.Param("id")

	var body messageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, "body must contain text", http.StatusBadRequest)
		return
	}

	h.run(c, convID, func(ctx context.Context) ([]session.Reply, error) {
		return h.search.OnText(ctx, convID, body.Text)
	})
}

func (h *Handler) action(c *gin.Context) {
	convID := c.Param("id")

	var body actionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, "body must contain action", http.StatusBadRequest)
		return
	}

	var step func(ctx context.Context) ([]session.Reply, error)
	switch body.Action {
	case session.ActionNextJob:
		step = func(ctx context.Context) ([]session.Reply, error) { return h.search.OnNext(ctx, convID) }
	case session.ActionSaveJob:
		step = func(ctx context.Context) ([]session.Reply, error) { return h.search.OnSave(ctx, convID, body.Ref) }
	case session.ActionNextSaved:
		step = func(ctx context.Context) ([]session.Reply, error) { return h.review.OnNext(ctx, convID) }
	case session.ActionRemoveJob:
		step = func(ctx context.Context) ([]session.Reply, error) { return h.review.OnRemove(ctx, convID, body.Ref) }
	default:
		jsonError(c, "unknown action "+string(body.Action), http.StatusBadRequest)
		return
	}

	h.run(c, convID, step)
}

// run executes step while holding the conversation's lock and writes its
// replies. Failures become a plain-language reply; unexpected input yields
// no reply at all.
func (h *Handler) run(c *gin.Context, convID string, step func(ctx context.Context) ([]session.Reply, error)) {
	unlock := h.locker.Lock(convID)
	replies, err := step(c.Request.Context())
	unlock()

	if err != nil {
		log := h.logger.With("conversation", convID, "request_id", c.GetString(requestIDKey))
		if apperrors.IsType(err, apperrors.ErrTypeUnexpectedInput) {
			log.Debug("ignored unexpected input", "err", err)
			replies = nil
		} else {
			log.Error("conversation step failed", "type", apperrors.TypeOf(err), "err", err)
			replies = []session.Reply{{Kind: session.KindMessage, Text: UserMessage(err)}}
		}
	}

	if replies == nil {
		replies = []session.Reply{}
	}
	c.JSON(http.StatusOK, repliesResponse{Replies: replies})
}

func jsonError(c *gin.Context, msg string, code int) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}
