package discoveryfilter

// Rule identifies which filter rule decided an entry.
type Rule int

const (
	// RuleHidden rejects any entry whose name starts with a dot.
	RuleHidden Rule = iota
	// RuleTopLevel admits a directory directly below the root only when its
	// name is one of the allowed top-level names.
	RuleTopLevel
	// RuleConfig admits a directory named config only at modules/config.
	RuleConfig
	// RuleSkipList rejects any other directory whose name is skipped.
	RuleSkipList
	// RuleManifest admits a file whose name ends with the manifest suffix.
	RuleManifest
)

// String returns the short name printed by the check command.
func (r Rule) String() string {
	switch r {
	case RuleHidden:
		return "hidden"
	case RuleTopLevel:
		return "top-level"
	case RuleConfig:
		return "config"
	case RuleSkipList:
		return "skip-list"
	case RuleManifest:
		return "manifest"
	default:
		return "unknown"
	}
}
