package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// KeyID records the API key identifier under the key "key_id".
// If id is nil, it returns an empty Attr.
func KeyID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("key_id", id)
}

// OwnerID records the key owner identifier under the key "owner_id".
// If id is nil, it returns an empty Attr.
func OwnerID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("owner_id", id)
}

// KeyPrefix records the displayable API key prefix under the key
// "key_prefix". Never log raw keys or hashes; the prefix is the only part
// of a key that may appear in logs.
func KeyPrefix(prefix string) slog.Attr {
	return slog.String("key_prefix", prefix)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
