package install

// Message constants
const (
	MsgShort = "Build and install a formula"
	MsgLong  = `Install fetches the formula's source, verifies its checksum, installs its
dependencies and then runs the build, test (with --with-test), install and
post-install steps in order. The first failing step stops the install and
its command and exit status are reported. Nothing is rolled back; the
source tree is kept for inspection.

The formula is either the name of an embedded or configured formula, or a
path to a .toml/.yaml formula file.`

	MsgExample = `  # Install the pinned TRIQS release into the default keg
  cellar install triqs

  # Run the test suite too and install under /opt/triqs
  cellar install triqs --with-test --prefix /opt/triqs

  # Build from the development branch with the IPython extras
  cellar install triqs --HEAD --with with-ipython

  # Show what would run without doing anything
  cellar install ./formulas/cthyb.toml --dry-run`

	MsgFlagKeepBuild = "Keep the source tree after a successful install"
	MsgFlagDryRun    = "Print the steps without fetching or running anything"
)
