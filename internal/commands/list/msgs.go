package list

// Message constants
const (
	MsgShort = "List available formulas"
	MsgLong  = `List prints the formulas found in the configured formula_dirs followed by
the ones built into cellar. A formula in a formula dir shadows a built-in
one with the same name.`
)
