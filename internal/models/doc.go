// Package models defines the core domain models for dangi-dongi.
//
// # Models
//
//   - User: a participant of the shared ledger, identified by name
//   - Transaction: one payment fronted by a participant and split across everyone
//   - Share: one participant's weight and fair share of a transaction
//   - Transfer: one instruction of a settlement plan
//   - Document: the full persisted ledger state
//
// # Design Principles
//
// 1. **Names are identities**: participants have no IDs, the name is the key
// 2. **Plain data**: models carry no behavior beyond formatting; invariants live in package ledger
// 3. **No pointers between models**: transactions reference participants by name only, so a
//    transaction can outlive the participant it mentions
package models
