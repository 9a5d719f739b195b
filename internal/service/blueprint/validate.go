package blueprint

import (
	"fmt"
	"regexp"
	"strings"

	"terraai/internal/domain/models"
)

var resourceDecl = regexp.MustCompile(`resource\s+"[^"]+"\s+"[^"]+"`)

// ValidationResult lists the structural problems found in a file.
type ValidationResult = models.FileValidation

// Validate runs a lightweight structural check over Terraform source:
// brace balance and resource declaration shape. It is not a parser.
func Validate(code string) ValidationResult {
	errs := []string{}
	depth := 0

	for i, line := range strings.Split(code, "\n") {
		depth += strings.Count(line, "{")
		depth -= strings.Count(line, "}")
		if depth < 0 {
			errs = append(errs, fmt.Sprintf("Line %d: Unmatched closing brace", i+1))
			depth = 0
		}
	}
	if depth != 0 {
		errs = append(errs, "Mismatched braces in file")
	}

	if strings.Contains(code, "resource") && !resourceDecl.MatchString(code) {
		errs = append(errs, "Invalid resource syntax")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateAll checks every file and returns results keyed by name.
func ValidateAll(files map[string]string) map[string]ValidationResult {
	out := make(map[string]ValidationResult, len(files))
	for name, code := range files {
		out[name] = Validate(code)
	}
	return out
}
