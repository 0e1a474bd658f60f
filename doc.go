// Package sweetshop is the client side of the Sweet Shop inventory API: a
// typed HTTP adapter, the Auth and Catalog services, and the session state
// container the web and terminal front ends are built on.
//
// Session lifecycle:
//   - A Session starts in StateBootstrapping. Initialize reads the stored
//     bearer token and resolves it through the Auth Service. Success moves it
//     to StateAuthenticated, any failure clears the token and the identity
//     snapshot and moves it to StateAnonymous.
//   - Login and Register return a Result instead of an error. Logout is local
//     and always succeeds.
//   - Transitions are checked against a fixed table. Listeners registered with
//     Subscribe receive a SessionEvent for every transition and outcome.
//
// Route guard:
//   - Decide maps every (State, RouteClass) pair to exactly one Outcome. The
//     web package applies it as middleware.
//
// Catalog:
//   - The client never edits a fetched Item. After a mutation the caller
//     fetches again with the same Filter, see CatalogService.Fetch.
package sweetshop
