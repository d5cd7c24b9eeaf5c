package types

type (
	// Extension is a discovered extension, identified by its manifest file.
	Extension struct {
		Name       string `json:"name"`
		Type       string `json:"type"`
		Path       string `json:"path"`     // directory holding the manifest, relative to SearchPath
		Manifest   string `json:"manifest"` // manifest file, relative to SearchPath
		SearchPath string `json:"searchPath"`
	}

	// ScanStats counts what a discovery pass visited and pruned.
	ScanStats struct {
		Visited       int `json:"visited"`
		PrunedDirs    int `json:"prunedDirs"`
		RejectedFiles int `json:"rejectedFiles"`
		Manifests     int `json:"manifests"`
		Errors        int `json:"errors,omitempty"`
	}

	// ScanResult contains the outcome of scanning one or more search paths.
	ScanResult struct {
		Extensions []Extension `json:"extensions"`
		Overridden []Extension `json:"overridden,omitempty"`
		Stats      ScanStats   `json:"stats"`
	}
)
