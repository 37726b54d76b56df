package fetch

// Message constants
const (
	MsgShort = "Download and verify a formula's source"
	MsgLong  = `Fetch downloads the formula's source archive into the cache and verifies
its SHA-256. The computed checksum is printed, which is how a checksum for
a new formula is obtained. With --HEAD the VCS source is cloned instead.`

	MsgExample = `  cellar fetch triqs
  cellar fetch triqs --HEAD`

	MsgFlagHead = "Clone the head (VCS) source"
)
