// Package testdb provides a PostgreSQL harness for integration tests.
//
// Open connects to the database named by BLOG_TEST_DATABASE_URL (or
// DATABASE_URL) and applies the embedded migrations once per pool. WithTx
// runs a test body inside a transaction that is always rolled back, so tests
// can share one database without cleaning up after themselves.
//
// When no database is configured, Open skips the test locally and fails it
// under CI, where a missing database is a pipeline misconfiguration.
package testdb
