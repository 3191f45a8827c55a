package diag

// Severity ranks a diagnostic. Errors abort the statement or source that
// raised them; warnings and notes never stop a batch.
type Severity uint8

const (
	// SevInfo carries context around other diagnostics.
	SevInfo Severity = iota
	// SevWarning flags suspicious input the toolchain still processed,
	// such as one register used under two aliases.
	SevWarning
	// SevError marks something the toolchain had to skip.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
