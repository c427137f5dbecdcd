package admin

import (
	"errors"
	"strings"

	"github.com/dujiao-next/delivery/internal/authz"
	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RolePolicyRequest 角色策略请求
type RolePolicyRequest struct {
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// GetRoles 角色矩阵
func (h *Handler) GetRoles(c *gin.Context) {
	views, err := h.AuthzService.DescribeRoles()
	if err != nil {
		handlershared.RespondError(c, response.CodeInternal, "load roles failed", err)
		return
	}
	response.Success(c, views)
}

// GrantRolePolicy 为角色授予接口权限
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(role, req.Object, req.Action); err != nil {
		respondAuthzError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("authz_policy_granted", "role", role, "object", req.Object, "action", req.Action)
	h.respondRolePolicies(c, role)
}

// RevokeRolePolicy 撤销角色接口权限
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(role, req.Object, req.Action); err != nil {
		respondAuthzError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("authz_policy_revoked", "role", role, "object", req.Object, "action", req.Action)
	h.respondRolePolicies(c, role)
}

func (h *Handler) respondRolePolicies(c *gin.Context, role string) {
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Success(c, policies)
}

func respondAuthzError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrBuiltinPolicy):
		handlershared.RespondError(c, response.CodeConflict, err.Error(), nil)
	case errors.Is(err, authz.ErrRoleRequired), errors.Is(err, authz.ErrActionRequired):
		handlershared.RespondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		handlershared.RespondError(c, response.CodeInternal, "update policy failed", err)
	}
}
