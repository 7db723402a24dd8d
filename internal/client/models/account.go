// Package models defines the domain shapes shared by the mirror, the remote
// client, and the gateway. JSON tags are the stable wire names of the
// intramail action API.
package models

// Role is the staff role assigned to an account.
type Role string

const (
	RoleSuperAdmin Role = "Super Administrator"
	RoleManagement Role = "Hospital Management"
	RoleDoctor     Role = "Medical Doctor"
	RoleNurse      Role = "Nurse"
	RolePharmacist Role = "Pharmacist"
	RoleLabStaff   Role = "Laboratory Staff"
	RoleAdminStaff Role = "Administrative Staff"
	RoleRecords    Role = "Records Officer"
)

// Department is the organizational unit an account belongs to.
type Department string

const (
	DeptManagement     Department = "Management"
	DeptClinical       Department = "Clinical Services"
	DeptNursing        Department = "Nursing Services"
	DeptPharmacy       Department = "Pharmacy"
	DeptLaboratory     Department = "Laboratory"
	DeptICT            Department = "ICT Unit"
	DeptAdministration Department = "Administration"
	DeptRecords        Department = "Medical Records"
)

// Account is a staff identity in the directory. Accounts are created by an
// administrator and are never hard-deleted while referenced by messages;
// removal from the directory is a soft flag kept by the mirror.
type Account struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Department Department `json:"department"`
	Avatar     string     `json:"avatar,omitempty"`
	IsOnline   bool       `json:"isOnline,omitempty"`
}

// IsAdmin reports whether the account may manage the directory.
func (a Account) IsAdmin() bool {
	return a.Role == RoleSuperAdmin || a.Role == RoleManagement
}
