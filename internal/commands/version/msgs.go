package version

// Message constants
const (
	MsgShort = "Print version information"
	MsgLong  = "Print detailed version information including commit hash and build date"

	MsgVersionFormat = "cellar version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"
)
