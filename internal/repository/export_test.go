package repository

import "database/sql"

// Shared with the external workflow tests, which import service and so
// cannot live in this package.
var (
	SeedCustomer      = seedCustomer
	SeedPaymentMethod = seedPaymentMethod
	CountRows         = countRows
)

func SharedDB() *sql.DB { return testDB }
