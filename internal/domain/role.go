package domain

// Role IDs are fixed by the schema seed.
const (
	RoleAdmin   int64 = 1
	RolePatient int64 = 2
)

type Role struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
