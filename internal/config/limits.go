package config

const (
	// MaxProjectTitleLength is the maximum length for project titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxProjectTitleLength = 255

	// MaxPromptLength caps a single generation prompt.
	MaxPromptLength = 20000

	// MaxFileNameLength is the maximum length of a generated file name.
	MaxFileNameLength = 255

	// MaxFilesPerProject bounds the FileSet stored with a project or
	// accepted from an imported archive.
	MaxFilesPerProject = 200

	// MaxArchiveSize is the largest zip accepted on import (10MB).
	MaxArchiveSize = 10 << 20

	// MaxCatalogTitleLength applies to DevOps catalog entries.
	MaxCatalogTitleLength = 255

	// MaxRejectionReasonLength bounds admin-provided rejection reasons.
	MaxRejectionReasonLength = 1000

	// DevOpsDailyImportLimit is the number of catalog imports a MONTHLY
	// user may perform per calendar day.
	DevOpsDailyImportLimit = 5
)
