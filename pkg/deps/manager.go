package deps

import (
	"sort"

	"github.com/arthur-debert/cellar/pkg/runner"
)

// Manager knows how to query and install system packages
type Manager struct {
	Name string
	// Check returns the command that exits zero when pkg is installed
	Check func(pkg string) runner.Command
	// Install returns the command that installs pkg
	Install func(pkg string) runner.Command
}

var managers = map[string]Manager{
	"brew": {
		Name: "brew",
		Check: func(pkg string) runner.Command {
			return runner.Command{Program: "brew", Args: []string{"list", "--versions", pkg}}
		},
		Install: func(pkg string) runner.Command {
			return runner.Command{Program: "brew", Args: []string{"install", pkg}}
		},
	},
	"apt-get": {
		Name: "apt-get",
		Check: func(pkg string) runner.Command {
			return runner.Command{Program: "dpkg", Args: []string{"-s", pkg}}
		},
		Install: func(pkg string) runner.Command {
			return runner.Command{Program: "apt-get", Args: []string{"install", "-y", pkg}}
		},
	},
	"dnf": {
		Name: "dnf",
		Check: func(pkg string) runner.Command {
			return runner.Command{Program: "rpm", Args: []string{"-q", pkg}}
		},
		Install: func(pkg string) runner.Command {
			return runner.Command{Program: "dnf", Args: []string{"install", "-y", pkg}}
		},
	},
}

// LookupManager returns the manager registered under name
func LookupManager(name string) (Manager, bool) {
	m, ok := managers[name]
	return m, ok
}

// ManagerNames lists the known package managers
func ManagerNames() []string {
	names := make([]string, 0, len(managers))
	for n := range managers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
