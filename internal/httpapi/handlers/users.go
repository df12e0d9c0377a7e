package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lmarquezt/chatvault/internal/auth"
	"github.com/lmarquezt/chatvault/internal/common"
)

type createUserReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "username and password required")
		return
	}

	user, err := h.Store.CreateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
	})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	userID, valid, err := h.Store.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		failFromErr(c, err)
		return
	}
	if !valid {
		common.Fail(c, http.StatusUnauthorized, 40103, "invalid credentials")
		return
	}

	if err := h.Agg.RecordLogin(c.Request.Context(), userID); err != nil {
		failFromErr(c, err)
		return
	}

	token, err := auth.SignJWT(userID, req.Username, h.Cfg.JWTSecret, h.Cfg.JWTTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to sign token")
		return
	}

	common.OK(c, gin.H{"id": userID, "token": token})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"users": users})
}

func (h *Handler) Me(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	username, err := h.Store.GetUsername(c.Request.Context(), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"id": uid, "username": username})
}

// DeleteUser removes the authenticated user's own account and everything
// that hangs off it.
func (h *Handler) DeleteUser(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid user id")
		return
	}
	if id != uid {
		common.Fail(c, http.StatusForbidden, 40301, "cannot delete another account")
		return
	}

	if err := h.Store.DeleteUser(c.Request.Context(), id); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"deleted": id})
}
