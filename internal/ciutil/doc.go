// Package ciutil detects the execution environment (CI or local) and resolves
// environment variables that the test harness reads under more than one name.
package ciutil
