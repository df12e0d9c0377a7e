package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lmarquezt/chatvault/internal/common"
)

func (h *Handler) GetProfile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	ctx := c.Request.Context()
	avatar, err := h.Store.GetAvatar(ctx, uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	theme, err := h.Store.GetTheme(ctx, uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"avatar_id": avatar, "theme": theme})
}

type setAvatarReq struct {
	AvatarID int `json:"avatar_id"`
}

func (h *Handler) SetAvatar(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req setAvatarReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if err := h.Store.SetAvatar(c.Request.Context(), uid, req.AvatarID); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"avatar_id": req.AvatarID})
}

type setThemeReq struct {
	Theme string `json:"theme"`
}

func (h *Handler) SetTheme(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req setThemeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if err := h.Store.SetTheme(c.Request.Context(), uid, req.Theme); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"theme": req.Theme})
}

func (h *Handler) GetStats(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	summary, err := h.Agg.Summary(c.Request.Context(), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, summary)
}
