package corpus

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"digital.vasic.specs/pkg/fault"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/spec"
	"digital.vasic.specs/pkg/version"
)

// Gid returns the real group id of the current process.
func Gid() int { return os.Getgid() }

// GIDRid is the Process::GID.rid alias of Gid.
func GIDRid() int { return syscall.Getgid() }

// SysGetgid is the Process::Sys.getgid alias of Gid.
func SysGetgid() int { return syscall.Getgid() }

// groupOf asks id(1) for the real group id.
func groupOf(env *spec.Env) int {
	out, err := exec.CommandContext(env.Context(), "id", "-gr").Output()
	if err != nil {
		env.Raise(fault.Wrap(fault.RuntimeError, err))
	}
	gid, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		env.Raise(fault.Wrap(fault.ArgumentError, err))
	}
	return gid
}

func declareProcess(root *spec.Group) {
	root.Describe("Process.gid", func(g *spec.Group) {
		g.Gate(version.NotOnPlatform("windows"))

		g.It("returns the correct gid for the user executing this process", func(env *spec.Env) {
			env.Expect(Gid()).To(matcher.Equal(groupOf(env)))
		})

		g.It("also goes by Process::GID.rid", func(env *spec.Env) {
			env.Expect(GIDRid()).To(matcher.Equal(Gid()))
		})

		g.It("also goes by Process::Sys.getgid", func(env *spec.Env) {
			env.Expect(SysGetgid()).To(matcher.Equal(Gid()))
		})
	})
}
