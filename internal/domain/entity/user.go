package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin" // único rol autorizado a registrar movimientos de stock
	RoleStaff = "staff"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, staff
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
