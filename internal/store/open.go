package store

import "fmt"

// Open returns the AddressBook for a configured driver ("sqlite" or
// "memory").
func Open(driver, path string) (AddressBook, error) {
	switch driver {
	case "", "sqlite":
		return OpenSQLite(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
