// internal/service/marketplace/domain/identity.go
package domain

// Role 是上游访问控制层已经验证过的角色。
type Role string

const (
	RoleVendor   Role = "vendor"   // 买方，下单
	RoleSupplier Role = "supplier" // 卖方，管理商品并推进订单状态
	RoleAdmin    Role = "admin"    // 管理员
)

// Identity 是经过认证的操作者身份。
// 核心信任这个输入，只做归属检查，不做认证。
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func (i Identity) IsVendor() bool { return i.Role == RoleVendor }

func (i Identity) IsSupplier() bool { return i.Role == RoleSupplier }
