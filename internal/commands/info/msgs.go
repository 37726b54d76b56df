package info

// Message constants
const (
	MsgShort   = "Show a formula's metadata, dependencies, options and caveats"
	MsgExample = `  cellar info triqs
  cellar info ./triqs.yaml --output json`
)
