package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵，顾客/骑手/管理员都继承 authenticated
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "authenticated",
			Policies: []Policy{
				{Object: "/notifications", Action: "GET"},
				{Object: "/notifications/:id/read", Action: "PUT"},
				{Object: "/orders/:id", Action: "GET"},
				{Object: "/orders/:id/history", Action: "GET"},
			},
		},
		{
			Role:     "customer",
			Inherits: []string{"authenticated"},
			Policies: []Policy{
				{Object: "/orders", Action: "GET"},
				{Object: "/orders", Action: "POST"},
				{Object: "/orders/:id/track", Action: "GET"},
				{Object: "/coupons/verify", Action: "POST"},
				{Object: "/delivery-fee", Action: "POST"},
			},
		},
		{
			Role:     "driver",
			Inherits: []string{"authenticated"},
			Policies: []Policy{
				{Object: "/driver/orders", Action: "GET"},
				{Object: "/driver/orders/:id/status", Action: "PUT"},
			},
		},
		{
			Role:     "admin",
			Inherits: []string{"authenticated"},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 写入预置角色、继承关系与默认策略，已存在的规则跳过
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return fmt.Errorf("create builtin role %s failed: %w", seed.Role, err)
		}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}

func builtinRoleSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, seed := range BuiltinRoleSeeds() {
		if role, err := NormalizeRole(seed.Role); err == nil {
			set[role] = struct{}{}
		}
	}
	return set
}

func isBuiltinPolicy(role, object, action string) bool {
	for _, seed := range BuiltinRoleSeeds() {
		seedRole, err := NormalizeRole(seed.Role)
		if err != nil || seedRole != role {
			continue
		}
		for _, policy := range seed.Policies {
			if NormalizeObject(policy.Object) == object && NormalizeAction(policy.Action) == action {
				return true
			}
		}
	}
	return false
}
