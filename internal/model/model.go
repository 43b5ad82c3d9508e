package model

// All returns every model managed by AutoMigrate
func All() []interface{} {
	return []interface{}{
		&Company{},
		&User{},
		&Agent{},
		&Voice{},
		&CompanyVoice{},
	}
}
