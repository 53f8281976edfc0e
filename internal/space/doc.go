// Package space models shared spaces (groups and rooms), their memberships,
// the role hierarchy, and the moderation policy that gates every membership
// mutation.
//
// All types here are pure data plus side-effect-free derivations. Persistence
// and command execution live in internal/services/spaces; nothing in this
// package touches storage or a clock it was not handed.
package space
