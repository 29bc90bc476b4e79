package rbac

import (
	"github.com/mandibazaar/mandi-backend/pkg/enums"
)

// Resource names a guarded API surface.
type Resource string

// Action names what the caller wants to do with a resource.
type Action string

const (
	ResourceOrders   Resource = "orders"
	ResourceWindows  Resource = "windows"
	ResourcePayments Resource = "payments"
	ResourceLedger   Resource = "ledger"
	ResourcePricing  Resource = "pricing"

	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionPay    Action = "pay"
	ActionVerify Action = "verify"
)

// Checker answers whether a role may perform an action on a resource.
type Checker interface {
	Allowed(role enums.AccountRole, resource Resource, action Action) bool
}

type permission struct {
	resource Resource
	action   Action
}

type staticChecker struct {
	grants map[enums.AccountRole]map[permission]struct{}
}

// NewStaticChecker returns the default permission matrix. Vendors place and
// pay for orders and open bulk windows to pool their volume; suppliers fulfil
// them. Both sides read their own ledger, payments, and quotes.
func NewStaticChecker() Checker {
	shared := []permission{
		{ResourceOrders, ActionRead},
		{ResourceWindows, ActionRead},
		{ResourcePayments, ActionCreate},
		{ResourcePayments, ActionRead},
		{ResourcePayments, ActionVerify},
		{ResourceLedger, ActionRead},
		{ResourcePricing, ActionRead},
	}
	vendor := append([]permission{
		{ResourceOrders, ActionCreate},
		{ResourceOrders, ActionPay},
		{ResourceWindows, ActionCreate},
	}, shared...)
	supplier := shared

	grants := map[enums.AccountRole]map[permission]struct{}{
		enums.AccountRoleVendor:   grantSet(vendor),
		enums.AccountRoleSupplier: grantSet(supplier),
	}
	return &staticChecker{grants: grants}
}

func grantSet(perms []permission) map[permission]struct{} {
	set := make(map[permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func (c *staticChecker) Allowed(role enums.AccountRole, resource Resource, action Action) bool {
	perms, ok := c.grants[role]
	if !ok {
		return false
	}
	_, ok = perms[permission{resource: resource, action: action}]
	return ok
}
