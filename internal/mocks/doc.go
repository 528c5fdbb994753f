// Package mocks provides test doubles for the store and auth interfaces.
//
// Function-field mocks (MockPostStore, MockUserStore, MockTokenService) fall
// back to working defaults when a field is nil, so tests only override the
// behavior they care about. TestifyMockUserStore is available for tests that
// prefer expectation-style assertions.
package mocks
