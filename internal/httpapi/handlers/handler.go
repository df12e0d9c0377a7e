package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lmarquezt/chatvault/internal/chat"
	"github.com/lmarquezt/chatvault/internal/common"
	"github.com/lmarquezt/chatvault/internal/config"
	"github.com/lmarquezt/chatvault/internal/httpapi/middleware"
	"github.com/lmarquezt/chatvault/internal/stats"
	"github.com/lmarquezt/chatvault/internal/store"
	"github.com/lmarquezt/chatvault/internal/store/rabbitmq"
)

type Handler struct {
	Store     *store.Store
	Cfg       config.Config
	ChatSvc   *chat.Service
	Agg       *stats.Aggregator
	Publisher *rabbitmq.Publisher // nil when async sends are disabled
}

func NewHandler(st *store.Store, cfg config.Config, chatSvc *chat.Service, agg *stats.Aggregator, pub *rabbitmq.Publisher) *Handler {
	return &Handler{Store: st, Cfg: cfg, ChatSvc: chatSvc, Agg: agg, Publisher: pub}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// failFromErr maps store sentinels onto HTTP envelopes. Everything is
// reported as data; no fault escapes the handler boundary.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		common.Fail(c, http.StatusConflict, 40901, "already exists")
	case errors.Is(err, store.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "not found")
	case errors.Is(err, store.ErrValidation):
		common.Fail(c, http.StatusBadRequest, 40001, err.Error())
	default:
		common.Fail(c, http.StatusInternalServerError, 50001, "storage failure")
	}
}
