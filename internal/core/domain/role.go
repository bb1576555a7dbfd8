package domain

// Role is the closed set of actor roles in the organization.
// Roles are compared only against these constants; free-form strings from the
// request layer are rejected at parse time, so case/spacing drift cannot occur.
type Role string

const (
	RoleFinanceManager Role = "finance_manager"
	RoleServiceManager Role = "service_manager"
	RoleTrainer        Role = "trainer"
	RoleInventory      Role = "inventory_manager"
	RoleSupplier       Role = "supplier"
	RoleDutiesManager  Role = "duties_manager"
	RoleCoordinator    Role = "community_service_coordinator"
	RoleMentor         Role = "mentor"
	// RoleCustomer covers youths and donors: actors who own bookings, donations
	// and duty enrollments but hold no staff permissions.
	RoleCustomer Role = "customer"
)

var allRoles = map[Role]struct{}{
	RoleFinanceManager: {},
	RoleServiceManager: {},
	RoleTrainer:        {},
	RoleInventory:      {},
	RoleSupplier:       {},
	RoleDutiesManager:  {},
	RoleCoordinator:    {},
	RoleMentor:         {},
	RoleCustomer:       {},
}

// ParseRole converts a raw string into a Role, reporting whether it is one of
// the declared roles.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := allRoles[r]
	return r, ok
}
