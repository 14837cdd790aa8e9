package vault

// Policy holds the upload acceptance rules evaluated at the HTTP boundary
// before Save is invoked. The store itself does not enforce them; keeping
// policy at the edge lets validation failures carry specific messages while
// the vault stays mechanism-only.
type Policy struct {
	AllowedTypes []string
	MaxBytes     int64
}

// DefaultMaxUploadBytes is the default size ceiling for uploaded documents.
const DefaultMaxUploadBytes = 10 << 20 // 10 MiB

// DefaultAllowedTypes lists the spreadsheet formats the quoting pipeline
// understands.
var DefaultAllowedTypes = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-excel",
	"application/vnd.oasis.opendocument.spreadsheet",
	"text/csv",
}

// DefaultPolicy returns the standard upload policy.
func DefaultPolicy() Policy {
	return Policy{AllowedTypes: DefaultAllowedTypes, MaxBytes: DefaultMaxUploadBytes}
}

// ValidateType reports whether mimeType is on the allow-list.
func (p Policy) ValidateType(mimeType string) bool {
	for _, t := range p.AllowedTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// ValidateSize reports whether a payload of n bytes is acceptable.
func (p Policy) ValidateSize(n int64) bool {
	return n > 0 && n <= p.MaxBytes
}
