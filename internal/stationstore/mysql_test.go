package stationstore

import "testing"

func TestMySQLStoreRequiresDSN(t *testing.T) {
	store := &MySQLStore{}
	if _, err := store.Load(); err == nil {
		t.Fatal("expected an error when DSN is empty")
	}
}
