// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Key components:
//
//   - PostService: paginated listing with body previews, authoring, partial
//     updates and ownership checks for posts
//   - UserService: registration and credential checks backed by the auth package
//
// Services receive their dependencies through constructor injection and depend
// only on the store interfaces, never on a specific backend.
package service
