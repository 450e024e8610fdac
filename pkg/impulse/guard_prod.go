//go:build impulse_prod

package impulse

// GuardsEnabled reports whether this build checks for illegal calls inside
// read-only contexts.
const GuardsEnabled = false

// allow always permits op: production builds carry no guard checks.
func (rt *Runtime) allow(Operation) bool {
	return true
}
