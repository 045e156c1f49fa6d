// Package memory remembers business facts a user typed into one tool and
// offers them back as prefill values in other tools.
//
// Each tool field may carry a catalog.Concept. Submitting a tool stores the
// non-empty values of those fields under their concept, overwriting older
// values. Prefill maps stored concepts back onto a tool's field names.
//
// A Memory lives inside the session. A Store mirrors it so a profile can
// outlive a process restart; RedisStore keeps it for a TTL.
package memory
