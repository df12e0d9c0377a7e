package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lmarquezt/chatvault/internal/common"
)

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	reply, err := h.ChatSvc.SendMessage(c.Request.Context(), uid, req.Message)
	if err != nil {
		failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{"reply": reply})
}

type sendAsyncReq struct {
	Message        string `json:"message" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (h *Handler) SendChatMessageAsync(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	if h.Publisher == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "async sends not available")
		return
	}

	var req sendAsyncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	var key *string
	if req.IdempotencyKey != "" {
		key = &req.IdempotencyKey
	}

	job, fresh, err := h.ChatSvc.EnqueueMessage(c.Request.Context(), uid, req.Message, key)
	if err != nil {
		failFromErr(c, err)
		return
	}
	if fresh {
		if err := h.Publisher.PublishJob(c.Request.Context(), job.ID); err != nil {
			log.Printf("publish job=%s err=%v", job.ID, err)
			common.Fail(c, http.StatusInternalServerError, 50003, "failed to enqueue job")
			return
		}
	}

	common.OK(c, gin.H{"job_id": job.ID, "status": job.Status})
}

func (h *Handler) GetChatJob(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	job, err := h.ChatSvc.GetJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "job not found")
			return
		}
		failFromErr(c, err)
		return
	}
	if job.UserID != uid {
		common.Fail(c, http.StatusNotFound, 40402, "job not found")
		return
	}

	common.OK(c, gin.H{
		"job_id":            job.ID,
		"status":            job.Status,
		"result_message_id": job.ResultMessageID,
		"error":             job.Error,
	})
}

// ListChatMessages returns history ascending; a positive limit keeps only
// the most recent N entries, still ascending.
func (h *Handler) ListChatMessages(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	msgs, err := h.Store.GetMessages(c.Request.Context(), uid, limit)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"messages": msgs})
}

func (h *Handler) ClearChatMessages(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	if err := h.ChatSvc.ClearConversation(c.Request.Context(), uid); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"cleared": true})
}
