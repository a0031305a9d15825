// Package redis implements the Redis-backed stores.
//
// Provides ReputationStore (sorted set "reputation"), CooldownStore (SET NX EX flags),
// PreferenceStore (hash "math_markup") and SetStore (one Redis set per owner and name).
// Every client built by NewClient carries metrics and circuit breaker hooks.
package redis
