package redis

import "strings"

const (
	defaultKeyPrefix = "fs"

	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	lockPrefix        = "lock"
)

// Keyspace builds colon-separated keys under a shared prefix so several
// environments can share one Redis database.
type Keyspace struct {
	prefix string
}

func NewKeyspace(prefix string) Keyspace {
	return Keyspace{prefix: strings.Trim(strings.TrimSpace(prefix), ":")}
}

func (k Keyspace) IdempotencyKey(scope, id string) string {
	return k.join(idempotencyPrefix, scope, id)
}

func (k Keyspace) RateLimitKey(scope string) string {
	return k.join(rateLimitPrefix, scope)
}

func (k Keyspace) LockKey(name string) string {
	return k.join(lockPrefix, name)
}

// join drops blank parts so an anonymous scope does not leave "::" gaps.
func (k Keyspace) join(parts ...string) string {
	prefix := k.prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	var b strings.Builder
	b.WriteString(prefix)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
