// Package domain defines the core types and store interfaces shared by the bot's features.
//
// Persisted state is limited to reputation scores, thank cooldowns, math markup
// preferences and user-defined named sets; each has a store interface here and a
// Redis implementation in internal/redis.
package domain
