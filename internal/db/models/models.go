package models

// All returns every model the daemon migrates.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Setting{},
		&SessionEntry{},
		&Hero{},
		&AboutItem{},
		&Product{},
		&Video{},
		&Document{},
		&NavigationItem{},
		&ProductModal{},
		&TechnicalSpec{},
		&Lead{},
	}
}
