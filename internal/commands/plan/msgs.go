package plan

// Message constants
const (
	MsgShort = "Print the steps an install would run"
	MsgLong  = `Plan resolves placeholders and option-gated arguments and prints every step
of an install in order: the fetch, each dependency, the build, test and
install commands and the post-install actions. Nothing is fetched or run.
The source tree appears as <source>.`

	MsgExample = `  cellar plan triqs
  cellar plan triqs --with-test --output json`
)
