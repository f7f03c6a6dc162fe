// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, soft deletes, and sequence generation. Child rows
// (recommended tracks, snapshot tracks) are written in the same transaction
// as their parent.
package repositories
