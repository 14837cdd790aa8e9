package vault

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lingvera/lingvera/internal/common"
)

// deliverablePrefix marks handles belonging to the Deliverables collection.
const deliverablePrefix = "t_"

// NameFor composes a collision-resistant, traversal-safe handle:
//
//	[t_]ownerID_unixMillis_suffix_sanitizedName
//
// The millisecond timestamp keeps repeated uploads of the same owner and
// filename apart; the short random suffix closes the same-millisecond window.
func NameFor(ownerID, originalFilename string, deliverable bool) string {
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		// CSPRNG failure; the uuid fallback reads the same source but
		// panics internally instead of surfacing an error here.
		suffix = uuid.NewString()[:8]
	}

	name := sanitizeFilename(originalFilename)
	if name == "" {
		name = "file_" + uuid.NewString()
	}

	handle := fmt.Sprintf("%s_%d_%s_%s", sanitizeFilename(ownerID), time.Now().UnixMilli(), suffix, name)
	if deliverable {
		handle = deliverablePrefix + handle
	}
	return handle
}

// sanitizeFilename strips directory structure from a caller-supplied name:
// path separators become underscores and ".." segments are dropped, so the
// result can never escape a collection root.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")

	var parts []string
	for _, part := range strings.Split(name, "/") {
		part = strings.TrimSpace(part)
		if part == "" || part == "." || part == ".." {
			continue
		}
		parts = append(parts, part)
	}

	return strings.Join(parts, "_")
}
