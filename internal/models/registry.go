package models

// All returns every table in migration order (parents first).
func All() []interface{} {
	return []interface{}{
		&User{},
		&Asset{},
		&AssetHistory{},
		&Complaint{},
		&MaintenanceSchedule{},
		&UserActivityLog{},
	}
}

// Ptr returns a pointer to v. Handy for the optional columns.
func Ptr[T any](v T) *T {
	return &v
}
