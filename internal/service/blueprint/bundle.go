package blueprint

import (
	"strings"

	"terraai/internal/domain/models"
)

var bundleSeparator = "\n\n" + strings.Repeat("=", 80) + "\n\n"

// Bundle concatenates all files, each under a "# name" heading, for
// copying to the clipboard in one go.
func Bundle(files models.FileSet) string {
	parts := make([]string, 0, len(files))
	for _, name := range files.Names() {
		parts = append(parts, "# "+name+"\n\n"+files[name])
	}
	return strings.Join(parts, bundleSeparator)
}
