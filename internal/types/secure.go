package types

// redacted is substituted for secret values in logs and serialization.
const redacted = "***REDACTED***"

// SecretString prevents accidental logging or serialization of sensitive
// configuration values (database URLs, provider credentials). String() and
// MarshalJSON() return a redacted placeholder; call Unmask() at the point
// where the raw value is genuinely needed.
type SecretString string

// String returns a redacted placeholder. Invoked by fmt and slog whenever
// the value is formatted.
func (s SecretString) String() string {
	return redacted
}

// MarshalJSON returns the redacted placeholder as a JSON string so config
// dumps and structured logs never carry the secret.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// Unmask returns the raw plaintext value. Limit callers to the places the
// secret is actually consumed (HTTP auth headers, connection strings).
func (s SecretString) Unmask() string {
	return string(s)
}
