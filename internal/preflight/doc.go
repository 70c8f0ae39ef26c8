// Package preflight provides readiness checks for the external tools and
// filesystem paths an export run depends on.
//
// These checks run in two contexts:
//   - The export command calls RunAll before starting a job. If any required
//     check fails, the job is refused before ffmpeg ever spawns.
//   - The CLI "clipforge probe" command uses the individual check functions
//     (CheckSystemDeps, CheckFreeSpace) to display tool and disk health.
package preflight
